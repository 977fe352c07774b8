package confirmation

import (
	"encoding/base64"
	"strings"

	errors "github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/core/common/validation"
)

const signaturePrefix = "data:image/png;base64,"

type ConfirmDTO struct {
	CourseID  string `json:"course_id"`
	Signature string `json:"signature"`
}

func (dto ConfirmDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("course_id", dto.CourseID).Required()
	v.Field("signature", dto.Signature).Required().Custom(func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, ok := DecodeSignature(s); !ok {
			return errors.NewValidationFieldError("signature", "signature must be a base64 PNG data URL", errors.ErrCodeInvalidSignature)
		}
		return nil
	})
	return v.Validate()
}

// DecodeSignature extracts the PNG bytes from a data URL. It reports false
// for anything that is not a non-empty base64 PNG payload.
func DecodeSignature(dataURL string) ([]byte, bool) {
	if !strings.HasPrefix(dataURL, signaturePrefix) {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, signaturePrefix))
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

type ConfirmResponse struct {
	Confirmation *Confirmation `json:"confirmation"`
	Created      bool          `json:"created"`
	CourseStatus string        `json:"course_status"`
}

// PendingCourse is one entry on the staff dashboard.
type PendingCourse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Content   string `json:"content"`
	Status    string `json:"status"`
}

type ConfirmationsResponse struct {
	Confirmations []*Confirmation `json:"confirmations"`
}
