package handler

import (
	"quizform/internal/domain"
	"quizform/internal/dto"
	"quizform/internal/middleware"
	"quizform/internal/service"
	"quizform/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// FormHandler serves the form catalog, attempt and history endpoints.
type FormHandler struct {
	formService service.FormService
}

func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// UploadForm creates a new form definition.
// @Summary Upload a form
// @Description Stores a new form definition. Requires an authoring role.
// @Tags form
// @Accept json
// @Produce json
// @Param request body dto.UploadFormRequest true "Form definition"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /form/upload [post]
func (h *FormHandler) UploadForm(c *fiber.Ctx) error {
	var req dto.UploadFormRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if err := validation.ValidateUploadForm(&req); err != nil {
		return err
	}

	userID, _ := c.Locals(middleware.UserIDKey).(string)
	role, _ := c.Locals(middleware.RoleKey).(string)

	if err := h.formService.UploadForm(c.Context(), userID, domain.Role(role), req.Form); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Upload success"})
}

// SpecifyForm returns one form prepared for taking.
// @Summary Fetch a form for an attempt
// @Description Returns the questions in presentation order plus the opaque attempt token.
// @Tags form
// @Produce json
// @Param fid query string true "Form ID"
// @Success 200 {object} dto.SpecifyFormResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /form/specify [get]
func (h *FormHandler) SpecifyForm(c *fiber.Ctx) error {
	fid := c.Query("fid")
	if err := validation.ValidateSpecifyForm(fid); err != nil {
		return err
	}

	resp, err := h.formService.GetFormForAttempt(c.Context(), fid)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// VerifyForm grades a submitted attempt.
// @Summary Grade an attempt
// @Description Grades the answers against the echoed attempt token and records the result.
// @Tags form
// @Accept json
// @Produce json
// @Param request body dto.VerifyFormRequest true "Submission"
// @Success 200 {object} dto.VerifyFormResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /form/verify [post]
func (h *FormHandler) VerifyForm(c *fiber.Ctx) error {
	var req dto.VerifyFormRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if err := validation.ValidateVerifyForm(&req); err != nil {
		return err
	}

	userID, _ := c.Locals(middleware.UserIDKey).(string)

	resp, err := h.formService.VerifyForm(c.Context(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// FormInformation lists forms for the catalog page.
// @Summary List forms
// @Tags form
// @Produce json
// @Param startPage query int false "Page number, 1-based"
// @Param piece query int false "Page size, 1 to 10"
// @Param searchFormName query string false "Name prefix filter"
// @Success 200 {object} dto.FormInformationResponse
// @Router /obtain/forminformation [get]
func (h *FormHandler) FormInformation(c *fiber.Ctx) error {
	startPage := c.QueryInt("startPage", 1)
	piece := c.QueryInt("piece", 0)
	search := c.Query("searchFormName")

	resp, err := h.formService.GetFormInformation(c.Context(), search, startPage, piece)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// History lists the caller's graded attempts.
// @Summary List attempt history
// @Tags form
// @Produce json
// @Param token query string false "Cursor token from the previous page"
// @Success 200 {object} dto.HistoryResponse
// @Router /obtain/history [get]
func (h *FormHandler) History(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	token := c.Query("token")

	resp, err := h.formService.GetHistory(c.Context(), userID, token)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// HistoryDetail reconstructs one past attempt.
// @Summary Expand one history record
// @Description Rebuilds the attempt exactly as it was presented, owner only.
// @Tags form
// @Produce json
// @Param hid path string true "History record ID"
// @Success 200 {object} dto.HistoryDetailResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /obtain/historydetails/{hid} [get]
func (h *FormHandler) HistoryDetail(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	hid := c.Params("hid")
	if hid == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("hid")}
	}

	resp, err := h.formService.GetHistoryDetail(c.Context(), userID, hid)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
