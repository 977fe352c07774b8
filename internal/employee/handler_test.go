package employee_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/training-tracker/internal/auth"
	employeeDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/employee"
	"github.com/frahmantamala/training-tracker/internal/employee"
	employeePostgres "github.com/frahmantamala/training-tracker/internal/employee/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Employee Handler Integration", func() {
	var (
		service *employee.Service
		handler *employee.Handler
		router  chi.Router
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&employeeDatamodel.Employee{})).To(Succeed())

		service = employee.NewService(employeePostgres.NewEmployeeRepository(db), testOptions, testLogger())
		handler = employee.NewHandler(service, 1<<20)

		router = chi.NewRouter()
		router.Post("/employees/register", handler.Register)
		router.Get("/employees", handler.List)
		router.Delete("/employees/{id}", handler.Delete)
		router.Post("/employees/import", handler.Import)
		router.Get("/me", handler.Me)
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Error.Code
	}

	It("registers an employee and hides the password hash", func() {
		req := httptest.NewRequest(http.MethodPost, "/employees/register",
			strings.NewReader(`{"id":"1234","name":"An","company":"Primary"}`))
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring(`"id":"00001234"`))
		Expect(rec.Body.String()).NotTo(ContainSubstring("password"))
	})

	It("maps an invalid id to INVALID_EMPLOYEE_ID details", func() {
		req := httptest.NewRequest(http.MethodPost, "/employees/register",
			strings.NewReader(`{"id":"12x","name":"An","company":"Primary"}`))
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_EMPLOYEE_ID"))
	})

	It("returns 409 for a duplicate id", func() {
		body := `{"id":"5","name":"An","company":"Vendor"}`
		Expect(serve(httptest.NewRequest(http.MethodPost, "/employees/register", strings.NewReader(body))).Code).To(Equal(http.StatusCreated))

		rec := serve(httptest.NewRequest(http.MethodPost, "/employees/register", strings.NewReader(body)))
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(rec)).To(Equal("EMPLOYEE_EXISTS"))
	})

	It("refuses to delete the seed administrator", func() {
		rec := serve(httptest.NewRequest(http.MethodDelete, "/employees/16041988", nil))
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(rec)).To(Equal("EMPLOYEE_PROTECTED"))
	})

	It("imports an uploaded workbook", func() {
		xlsx := workbook(
			[]interface{}{"ID", "Name", "Part", "Group"},
			[]interface{}{"11", "Hoa", "1P", "G"},
			[]interface{}{"oops", "Bad"},
		)

		var payload bytes.Buffer
		mw := multipart.NewWriter(&payload)
		part, err := mw.CreateFormFile("file", "staff.xlsx")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(xlsx.Bytes())
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.WriteField("company", "Vendor")).To(Succeed())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/employees/import", &payload)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		var result employee.ImportResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Imported).To(Equal(1))
		Expect(result.Errors).To(HaveLen(1))

		listRec := serve(httptest.NewRequest(http.MethodGet, "/employees?company=Vendor", nil))
		Expect(listRec.Code).To(Equal(http.StatusOK))
		Expect(listRec.Body.String()).To(ContainSubstring(`"id":"00000011"`))
	})

	It("rejects an upload that is not a spreadsheet", func() {
		var payload bytes.Buffer
		mw := multipart.NewWriter(&payload)
		part, err := mw.CreateFormFile("file", "staff.txt")
		Expect(err).NotTo(HaveOccurred())
		_, _ = part.Write([]byte("hello"))
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/employees/import", &payload)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(rec)).To(Equal("INVALID_SPREADSHEET"))
	})

	It("returns the authenticated employee from /me", func() {
		_, err := service.Register(context.Background(), employee.RegisterDTO{ID: "77", Name: "Me", Company: "Primary"})
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), &auth.Principal{EmployeeID: "00000077", Role: employee.RoleStaff}))
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"name":"Me"`))
	})

	It("rejects /me without a principal", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/me", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
