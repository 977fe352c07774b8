package employee_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"

	"github.com/frahmantamala/training-tracker/internal/auth"
	"github.com/frahmantamala/training-tracker/internal/employee"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEmployee(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Suite")
}

type mockRepository struct {
	employees  map[string]*employee.Employee
	upserts    [][]*employee.Employee
	shouldFail bool
	failError  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{employees: make(map[string]*employee.Employee)}
}

func (m *mockRepository) SetShouldFail(fail bool, err error) {
	m.shouldFail = fail
	m.failError = err
}

func (m *mockRepository) Create(_ context.Context, e *employee.Employee) error {
	if m.shouldFail {
		return m.failError
	}
	if _, ok := m.employees[e.ID]; ok {
		return employee.ErrAlreadyExists
	}
	m.employees[e.ID] = e
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*employee.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	e, ok := m.employees[id]
	if !ok {
		return nil, employee.ErrNotFound
	}
	return e, nil
}

func (m *mockRepository) GetMany(_ context.Context, ids []string) ([]*employee.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*employee.Employee
	for _, id := range ids {
		if e, ok := m.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepository) List(_ context.Context, company string) ([]*employee.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*employee.Employee
	for _, e := range m.employees {
		if company == "" || e.Company == company {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) Delete(_ context.Context, id string) error {
	if m.shouldFail {
		return m.failError
	}
	if _, ok := m.employees[id]; !ok {
		return employee.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *mockRepository) Upsert(_ context.Context, employees []*employee.Employee) (int, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	m.upserts = append(m.upserts, employees)
	for _, e := range employees {
		if existing, ok := m.employees[e.ID]; ok {
			existing.Name, existing.Part, existing.Group, existing.Company = e.Name, e.Part, e.Group, e.Company
			continue
		}
		m.employees[e.ID] = e
	}
	return len(employees), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var testOptions = employee.Options{
	DefaultPassword: "welcome-1",
	BCryptCost:      4,
	ProtectedID:     "16041988",
}

var _ = Describe("Employee Service", func() {
	var (
		repo    *mockRepository
		service *employee.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockRepository()
		service = employee.NewService(repo, testOptions, testLogger())
		ctx = context.Background()
	})

	Describe("Register", func() {
		It("pads the id and fills default tags", func() {
			e, err := service.Register(ctx, employee.RegisterDTO{ID: "1234", Name: " Nguyễn Văn An ", Company: employee.CompanyPrimary})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ID).To(Equal("00001234"))
			Expect(e.Name).To(Equal("Nguyễn Văn An"))
			Expect(e.Part).To(Equal(employee.DefaultTag))
			Expect(e.Group).To(Equal(employee.DefaultTag))
			Expect(e.Role).To(Equal(employee.RoleStaff))
		})

		It("hashes the default password", func() {
			e, err := service.Register(ctx, employee.RegisterDTO{ID: "7", Name: "An", Company: employee.CompanyVendor})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.PasswordHash).NotTo(Equal(testOptions.DefaultPassword))
			Expect(auth.VerifyPassword(e.PasswordHash, testOptions.DefaultPassword)).To(Succeed())
		})

		It("rejects ids that are not 1 to 8 digits", func() {
			for _, raw := range []string{"12a4", "123456789"} {
				_, err := service.Register(ctx, employee.RegisterDTO{ID: raw, Name: "An", Company: employee.CompanyPrimary})
				Expect(errors.Is(err, employee.ErrInvalidEmployeeID)).To(BeTrue(), raw)
			}
		})

		It("requires a name and a known company", func() {
			_, err := service.Register(ctx, employee.RegisterDTO{ID: "1", Company: "Acme"})
			Expect(err).To(HaveOccurred())
			Expect(repo.employees).To(BeEmpty())
		})

		It("reports duplicates", func() {
			dto := employee.RegisterDTO{ID: "1", Name: "An", Company: employee.CompanyPrimary}
			_, err := service.Register(ctx, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Register(ctx, employee.RegisterDTO{ID: "00000001", Name: "Binh", Company: employee.CompanyPrimary})
			Expect(errors.Is(err, employee.ErrAlreadyExists)).To(BeTrue())
		})
	})

	Describe("Create", func() {
		It("uses the given password", func() {
			e, err := service.Create(ctx, employee.CreateEmployeeDTO{
				RegisterDTO: employee.RegisterDTO{ID: "42", Name: "Chi", Company: employee.CompanyPrimary},
				Password:    "s3cret",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.VerifyPassword(e.PasswordHash, "s3cret")).To(Succeed())
		})

		It("falls back to the default password", func() {
			e, err := service.Create(ctx, employee.CreateEmployeeDTO{
				RegisterDTO: employee.RegisterDTO{ID: "43", Name: "Dung", Company: employee.CompanyPrimary},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.VerifyPassword(e.PasswordHash, testOptions.DefaultPassword)).To(Succeed())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			repo.employees["00000001"] = &employee.Employee{ID: "00000001", Name: "Trần Thị Bình", Company: employee.CompanyPrimary}
			repo.employees["00000002"] = &employee.Employee{ID: "00000002", Name: "Đỗ Văn An", Company: employee.CompanyPrimary}
			repo.employees["00000003"] = &employee.Employee{ID: "00000003", Name: "Lê Cường", Company: employee.CompanyVendor}
		})

		It("sorts by folded name", func() {
			list, err := service.List(ctx, employee.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(3))
			Expect(list[0].ID).To(Equal("00000002"))
			Expect(list[1].ID).To(Equal("00000003"))
			Expect(list[2].ID).To(Equal("00000001"))
		})

		It("filters by company", func() {
			list, err := service.List(ctx, employee.ListFilter{Company: employee.CompanyVendor})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Name).To(Equal("Lê Cường"))
		})

		It("searches without diacritics", func() {
			list, err := service.List(ctx, employee.ListFilter{Search: "do van"})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].ID).To(Equal("00000002"))
		})

		It("searches by id substring", func() {
			list, err := service.List(ctx, employee.ListFilter{Search: "0003"})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].ID).To(Equal("00000003"))
		})

		It("propagates repository errors", func() {
			repo.SetShouldFail(true, errors.New("db down"))
			_, err := service.List(ctx, employee.ListFilter{})
			Expect(err).To(MatchError("db down"))
		})
	})

	Describe("Delete", func() {
		It("refuses the seed administrator", func() {
			repo.employees["16041988"] = &employee.Employee{ID: "16041988", Role: employee.RoleAdmin}
			err := service.Delete(ctx, "16041988")
			Expect(errors.Is(err, employee.ErrProtected)).To(BeTrue())
			Expect(repo.employees).To(HaveKey("16041988"))
		})

		It("deletes by unpadded id", func() {
			repo.employees["00000009"] = &employee.Employee{ID: "00000009"}
			Expect(service.Delete(ctx, "9")).To(Succeed())
			Expect(repo.employees).NotTo(HaveKey("00000009"))
		})

		It("reports a missing employee", func() {
			err := service.Delete(ctx, "5")
			Expect(errors.Is(err, employee.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Import", func() {
		It("upserts valid rows and reports invalid ones", func() {
			repo.employees["00000001"] = &employee.Employee{ID: "00000001", Name: "Old", Role: employee.RoleStaff, PasswordHash: "keep"}

			rows := []employee.ImportRow{
				{Line: 2, ID: "1", Name: "New Name", Part: "1P"},
				{Line: 3, ID: "abc", Name: "Bad"},
				{Line: 4, ID: "16041988", Name: "Impostor"},
				{Line: 5, ID: "2", Name: "Hoa", Company: employee.CompanyVendor},
				{Line: 6, ID: "3", Name: ""},
				{Line: 7, ID: "2", Name: "Hoa Updated", Company: employee.CompanyVendor},
			}

			result, err := service.Import(ctx, rows, employee.CompanyPrimary)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Imported).To(Equal(2))
			Expect(result.Skipped).To(Equal(2))
			Expect(result.Errors).To(HaveLen(2))
			Expect(result.Errors[0].Line).To(Equal(3))
			Expect(result.Errors[1].Line).To(Equal(6))

			Expect(repo.employees["00000001"].Name).To(Equal("New Name"))
			Expect(repo.employees["00000001"].PasswordHash).To(Equal("keep"))
			Expect(repo.employees["00000001"].Company).To(Equal(employee.CompanyPrimary))
			Expect(repo.employees["00000002"].Name).To(Equal("Hoa Updated"))
			Expect(repo.employees).NotTo(HaveKey("16041988"))
		})

		It("skips the repository when nothing is valid", func() {
			result, err := service.Import(ctx, []employee.ImportRow{{Line: 2, ID: "x"}}, employee.CompanyPrimary)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Imported).To(BeZero())
			Expect(repo.upserts).To(BeEmpty())
		})
	})
})
