package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"quizform/internal/config"
	"quizform/internal/domain"
	"quizform/internal/dto"
	"quizform/internal/handler"
	"quizform/internal/logger"
	"quizform/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Initialize(config.LoggerConfig{Level: "error", Env: "test"})
}

// --- Manual Mocks ---

// MockFormService
type MockFormService struct {
	UploadFormFunc         func(ctx context.Context, authorID string, role domain.Role, form *dto.UploadFormData) error
	GetFormForAttemptFunc  func(ctx context.Context, fid string) (*dto.SpecifyFormResponse, error)
	VerifyFormFunc         func(ctx context.Context, userID string, req *dto.VerifyFormRequest) (*dto.VerifyFormResponse, error)
	GetFormInformationFunc func(ctx context.Context, searchFormName string, startPage, piece int) (*dto.FormInformationResponse, error)
	GetHistoryFunc         func(ctx context.Context, userID, pageToken string) (*dto.HistoryResponse, error)
	GetHistoryDetailFunc   func(ctx context.Context, userID, historyID string) (*dto.HistoryDetailResponse, error)
}

func (m *MockFormService) UploadForm(ctx context.Context, authorID string, role domain.Role, form *dto.UploadFormData) error {
	if m.UploadFormFunc != nil {
		return m.UploadFormFunc(ctx, authorID, role, form)
	}
	panic("MockFormService.UploadFormFunc not implemented")
}
func (m *MockFormService) GetFormForAttempt(ctx context.Context, fid string) (*dto.SpecifyFormResponse, error) {
	if m.GetFormForAttemptFunc != nil {
		return m.GetFormForAttemptFunc(ctx, fid)
	}
	panic("MockFormService.GetFormForAttemptFunc not implemented")
}
func (m *MockFormService) VerifyForm(ctx context.Context, userID string, req *dto.VerifyFormRequest) (*dto.VerifyFormResponse, error) {
	if m.VerifyFormFunc != nil {
		return m.VerifyFormFunc(ctx, userID, req)
	}
	panic("MockFormService.VerifyFormFunc not implemented")
}
func (m *MockFormService) GetFormInformation(ctx context.Context, searchFormName string, startPage, piece int) (*dto.FormInformationResponse, error) {
	if m.GetFormInformationFunc != nil {
		return m.GetFormInformationFunc(ctx, searchFormName, startPage, piece)
	}
	panic("MockFormService.GetFormInformationFunc not implemented")
}
func (m *MockFormService) GetHistory(ctx context.Context, userID, pageToken string) (*dto.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, userID, pageToken)
	}
	panic("MockFormService.GetHistoryFunc not implemented")
}
func (m *MockFormService) GetHistoryDetail(ctx context.Context, userID, historyID string) (*dto.HistoryDetailResponse, error) {
	if m.GetHistoryDetailFunc != nil {
		return m.GetHistoryDetailFunc(ctx, userID, historyID)
	}
	panic("MockFormService.GetHistoryDetailFunc not implemented")
}

func newFormApp(svc *MockFormService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	h := handler.NewFormHandler(svc)
	// Locals are normally set by the auth middleware.
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, "user-1")
		c.Locals(middleware.RoleKey, "USER")
		return c.Next()
	})
	app.Get("/api/form/specify", h.SpecifyForm)
	app.Post("/api/form/verify", h.VerifyForm)
	app.Get("/api/obtain/historydetails/:hid", h.HistoryDetail)
	return app
}

func TestSpecifyFormHandler(t *testing.T) {
	svc := &MockFormService{
		GetFormForAttemptFunc: func(ctx context.Context, fid string) (*dto.SpecifyFormResponse, error) {
			assert.Equal(t, "form-1", fid)
			return &dto.SpecifyFormResponse{
				Message:   "Get success",
				Questions: []dto.QuestionDTO{{Question: "Q1", Options: []string{"A", "B"}}},
				FormIndex: "deadbeef",
				FormName:  "Anatomy",
				Fid:       "form-1",
			}, nil
		},
	}
	app := newFormApp(svc)

	req := httptest.NewRequest("GET", "/api/form/specify?fid=form-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var parsed dto.SpecifyFormResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, "deadbeef", parsed.FormIndex)
}

func TestSpecifyFormHandlerMissingFid(t *testing.T) {
	app := newFormApp(&MockFormService{})

	req := httptest.NewRequest("GET", "/api/form/specify", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSpecifyFormHandlerNotFound(t *testing.T) {
	svc := &MockFormService{
		GetFormForAttemptFunc: func(ctx context.Context, fid string) (*dto.SpecifyFormResponse, error) {
			return nil, domain.NewFormNotFoundError(fid)
		},
	}
	app := newFormApp(svc)

	req := httptest.NewRequest("GET", "/api/form/specify?fid=missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestVerifyFormHandler(t *testing.T) {
	svc := &MockFormService{
		VerifyFormFunc: func(ctx context.Context, userID string, req *dto.VerifyFormRequest) (*dto.VerifyFormResponse, error) {
			assert.Equal(t, "user-1", userID)
			assert.Equal(t, "form-1", req.Fid)
			return &dto.VerifyFormResponse{Message: "You score : 67", Score: 67}, nil
		},
	}
	app := newFormApp(svc)

	payload, _ := json.Marshal(dto.VerifyFormRequest{
		Fid:       "form-1",
		Answers:   [][]int{{0}},
		FormIndex: "deadbeef",
	})
	req := httptest.NewRequest("POST", "/api/form/verify", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var parsed dto.VerifyFormResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, 67, parsed.Score)
}

func TestVerifyFormHandlerInvalidToken(t *testing.T) {
	svc := &MockFormService{
		VerifyFormFunc: func(ctx context.Context, userID string, req *dto.VerifyFormRequest) (*dto.VerifyFormResponse, error) {
			return nil, domain.NewInvalidTokenError(nil)
		},
	}
	app := newFormApp(svc)

	payload, _ := json.Marshal(dto.VerifyFormRequest{
		Fid:       "form-1",
		Answers:   [][]int{{0}},
		FormIndex: "tampered",
	})
	req := httptest.NewRequest("POST", "/api/form/verify", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHistoryDetailHandlerForbidden(t *testing.T) {
	svc := &MockFormService{
		GetHistoryDetailFunc: func(ctx context.Context, userID, historyID string) (*dto.HistoryDetailResponse, error) {
			return nil, domain.NewForbiddenError("not id")
		},
	}
	app := newFormApp(svc)

	req := httptest.NewRequest("GET", "/api/obtain/historydetails/h1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
