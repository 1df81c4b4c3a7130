package validation

import (
	"quizform/internal/domain"
	"quizform/internal/dto"
)

// ValidateSpecifyForm checks the attempt-preparation query.
func ValidateSpecifyForm(fid string) error {
	if fid == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("fid")}
	}
	return nil
}

// ValidateVerifyForm checks a grading submission. Answer contents are not
// range-checked here; the grading engine rejects out-of-range indices itself.
func ValidateVerifyForm(req *dto.VerifyFormRequest) error {
	var errs domain.ValidationErrors
	if req.Fid == "" {
		errs = append(errs, domain.NewMissingFieldError("fid"))
	}
	if req.FormIndex == "" {
		errs = append(errs, domain.NewMissingFieldError("formIndex"))
	}
	if req.Answers == nil {
		errs = append(errs, domain.NewMissingFieldError("answers"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateUploadForm checks the shape of a form definition upload. Cross-field
// consistency (answer/question counts, index bounds) lives on the domain type.
func ValidateUploadForm(req *dto.UploadFormRequest) error {
	var errs domain.ValidationErrors
	if req.Form == nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("form")}
	}
	if req.Form.FormName == "" {
		errs = append(errs, domain.NewMissingFieldError("form.formName"))
	}
	if req.Form.IsSingleChoice == nil {
		errs = append(errs, domain.NewMissingFieldError("form.isSingleChoice"))
	}
	if req.Form.IsRandomized == nil {
		errs = append(errs, domain.NewMissingFieldError("form.isRandomized"))
	}
	if len(req.Form.Questions) == 0 {
		errs = append(errs, domain.NewMissingFieldError("form.questions"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateLogin checks a password login request.
func ValidateLogin(req *dto.LoginRequest) error {
	var errs domain.ValidationErrors
	if req.Email == "" {
		errs = append(errs, domain.NewMissingFieldError("email"))
	}
	if req.Password == "" {
		errs = append(errs, domain.NewMissingFieldError("password"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateQRLogin checks a QR token redemption request.
func ValidateQRLogin(req *dto.QRLoginRequest) error {
	var errs domain.ValidationErrors
	if req.Email == "" {
		errs = append(errs, domain.NewMissingFieldError("email"))
	}
	if req.Password == "" {
		errs = append(errs, domain.NewMissingFieldError("password"))
	}
	if req.Token == "" {
		errs = append(errs, domain.NewMissingFieldError("token"))
	}
	if req.PcID == "" {
		errs = append(errs, domain.NewMissingFieldError("pcId"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
