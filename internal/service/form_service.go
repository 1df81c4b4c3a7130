package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"quizform/internal/config"
	"quizform/internal/domain"
	"quizform/internal/dto"
	"quizform/internal/logger"
	"quizform/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	historyPageSize = 5
	formPageDefault = 7
	formPageMax     = 10
	formPageMin     = 1
)

// FormService defines the interface for form-related operations
type FormService interface {
	UploadForm(ctx context.Context, authorID string, role domain.Role, form *dto.UploadFormData) error
	GetFormForAttempt(ctx context.Context, fid string) (*dto.SpecifyFormResponse, error)
	VerifyForm(ctx context.Context, userID string, req *dto.VerifyFormRequest) (*dto.VerifyFormResponse, error)
	GetFormInformation(ctx context.Context, searchFormName string, startPage, piece int) (*dto.FormInformationResponse, error)
	GetHistory(ctx context.Context, userID, pageToken string) (*dto.HistoryResponse, error)
	GetHistoryDetail(ctx context.Context, userID, historyID string) (*dto.HistoryDetailResponse, error)
}

// formService implements FormService
type formService struct {
	formRepo    domain.FormRepository
	historyRepo domain.HistoryRepository
	txManager   domain.TransactionManager
	keyIssuer   domain.KeyIssuer
	cfg         *config.Config
}

// NewFormService creates a new instance of formService
func NewFormService(
	formRepo domain.FormRepository,
	historyRepo domain.HistoryRepository,
	txManager domain.TransactionManager,
	keyIssuer domain.KeyIssuer,
	cfg *config.Config,
) FormService {
	return &formService{
		formRepo:    formRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		keyIssuer:   keyIssuer,
		cfg:         cfg,
	}
}

// UploadForm creates a new form definition. Key material for the attempt
// tokens is minted here, once per definition.
func (s *formService) UploadForm(ctx context.Context, authorID string, role domain.Role, data *dto.UploadFormData) error {
	if !role.CanAuthorForms() {
		return domain.NewForbiddenError("You don't have enough authority")
	}
	if data == nil || data.IsSingleChoice == nil || data.IsRandomized == nil {
		return domain.NewInvalidInputError("form error")
	}

	key, iv, err := s.keyIssuer.NewKeyPair()
	if err != nil {
		return domain.NewInternalError("Failed to generate form key material", err)
	}

	questions := make([]domain.Question, len(data.Questions))
	for i, q := range data.Questions {
		questions[i] = domain.Question{Question: q.Question, Options: q.Options}
	}

	form := domain.NewForm(
		data.FormName,
		authorID,
		*data.IsSingleChoice,
		*data.IsRandomized,
		questions,
		data.CorrectAnswer,
		key,
		iv,
	)
	if err := form.Validate(); err != nil {
		return err
	}

	if err := s.formRepo.CreateForm(ctx, form); err != nil {
		return domain.NewInternalError("Upload failed", err)
	}

	logger.Get().Info("Form uploaded",
		zap.String("formID", form.ID),
		zap.String("authorID", authorID),
		zap.Int("questions", len(form.Questions)))
	return nil
}

// GetFormForAttempt prepares one attempt: a fresh shuffle when the form is
// randomized, the identity order otherwise, plus the encrypted mapping token
// the client must echo back on submit. Nothing is persisted; concurrent
// attempts never share state.
func (s *formService) GetFormForAttempt(ctx context.Context, fid string) (*dto.SpecifyFormResponse, error) {
	form, err := s.formRepo.GetFormByID(ctx, fid)
	if err != nil {
		return nil, domain.NewInternalError("Query failed", err)
	}
	if form == nil {
		return nil, domain.NewFormNotFoundError(fid)
	}

	index := form.IdentityIndex()
	if form.IsRandomized {
		index = form.ShuffledIndex()
	}

	presented, err := form.Project(index)
	if err != nil {
		return nil, domain.NewInternalError("Failed to project form", err)
	}

	payload, err := json.Marshal(index)
	if err != nil {
		return nil, domain.NewInternalError("Failed to serialize attempt index", err)
	}
	token, err := util.EncryptIndex(string(payload), form.Key, form.IV)
	if err != nil {
		return nil, domain.NewInternalError("Failed to encrypt attempt index", err)
	}

	questions := make([]dto.QuestionDTO, len(presented))
	for i, q := range presented {
		questions[i] = dto.QuestionDTO{Question: q.Question, Options: q.Options}
	}

	return &dto.SpecifyFormResponse{
		Message:        "Get success",
		Questions:      questions,
		FormIndex:      token,
		IsSingleChoice: form.IsSingleChoice,
		FormName:       form.FormName,
		Fid:            form.ID,
	}, nil
}

// VerifyForm grades one attempt against its echoed token and records the
// result. The score is reported only after the history write commits; a
// failed write reports nothing, so the attempt can be resubmitted.
func (s *formService) VerifyForm(ctx context.Context, userID string, req *dto.VerifyFormRequest) (*dto.VerifyFormResponse, error) {
	form, err := s.formRepo.GetFormByID(ctx, req.Fid)
	if err != nil {
		return nil, domain.NewInternalError("Query failed", err)
	}
	if form == nil {
		return nil, domain.NewFormNotFoundError(req.Fid)
	}

	plaintext, err := util.DecryptIndex(req.FormIndex, form.Key, form.IV)
	if err != nil {
		logger.Get().Warn("Attempt token rejected",
			zap.String("formID", req.Fid),
			zap.String("userID", userID),
			zap.Error(err))
		return nil, domain.NewInvalidTokenError(err)
	}

	var index []domain.AttemptIndex
	if err := json.Unmarshal([]byte(plaintext), &index); err != nil {
		return nil, domain.NewInvalidTokenError(err)
	}

	result, err := form.Grade(index, req.Answers)
	if err != nil {
		return nil, err
	}

	history := &domain.HistoryForm{
		UserID:               userID,
		FormID:               form.ID,
		FormName:             form.FormName,
		Score:                result.Score,
		ErrorQuestionIndex:   result.ErrorQuestionIndex,
		ErrorAnswerIndexs:    result.ErrorAnswerIndexs,
		FormQuestAnswerIndex: req.FormIndex,
	}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.historyRepo.CreateHistory(txCtx, history)
	})
	if err != nil {
		return nil, domain.NewInternalError("Add failed", err)
	}

	logger.Get().Info("Attempt graded",
		zap.String("formID", form.ID),
		zap.String("userID", userID),
		zap.Int("score", result.Score),
		zap.Int("wrong", len(result.ErrorQuestionIndex)))

	return &dto.VerifyFormResponse{
		Message: fmt.Sprintf("You score : %d", result.Score),
		Score:   result.Score,
	}, nil
}

// GetFormInformation returns one page of the form catalog.
func (s *formService) GetFormInformation(ctx context.Context, searchFormName string, startPage, piece int) (*dto.FormInformationResponse, error) {
	if startPage < 1 {
		startPage = 1
	}
	if piece < formPageMin || piece > formPageMax {
		piece = formPageDefault
	}

	count, err := s.formRepo.CountForms(ctx, searchFormName)
	if err != nil {
		return nil, domain.NewInternalError("Fetch failed", err)
	}
	totalPages := int(math.Ceil(float64(count) / float64(piece)))
	if startPage > totalPages {
		return nil, domain.NewInvalidInputError("no data")
	}

	summaries, err := s.formRepo.GetForms(ctx, searchFormName, piece*(startPage-1), piece)
	if err != nil {
		return nil, domain.NewInternalError("Fetch failed", err)
	}

	forms := make([]dto.FormInfo, 0, len(summaries))
	for _, summary := range summaries {
		forms = append(forms, dto.FormInfo{
			ID:             summary.ID,
			FormName:       summary.FormName,
			FormCreateTime: summary.FormCreateTime,
			Author:         dto.FormAuthor{UserName: summary.AuthorName},
		})
	}

	return &dto.FormInformationResponse{
		Message:    "Get success",
		Forms:      forms,
		TotalPages: totalPages,
	}, nil
}

// GetHistory lists the caller's graded attempts, newest first, using a signed
// offset cursor. An unreadable cursor restarts from the first page.
func (s *formService) GetHistory(ctx context.Context, userID, pageToken string) (*dto.HistoryResponse, error) {
	start := 0
	if pageToken != "" {
		if claims, err := s.parsePageToken(pageToken); err == nil {
			start = claims.Start
		}
	}

	summaries, err := s.historyRepo.GetHistoriesByUserID(ctx, userID, start, historyPageSize)
	if err != nil {
		return nil, domain.NewInternalError("Query error", err)
	}

	nextToken, err := s.signPageToken(start + historyPageSize)
	if err != nil {
		return nil, domain.NewInternalError("Query error", err)
	}

	history := make([]dto.HistoryItem, 0, len(summaries))
	for _, summary := range summaries {
		history = append(history, dto.HistoryItem{
			ID:                    summary.ID,
			FormName:              summary.FormName,
			Score:                 summary.Score,
			FormID:                summary.FormID,
			HistoryFormCreateTime: summary.HistoryFormCreateTime,
		})
	}

	return &dto.HistoryResponse{
		Message: "search successful",
		History: history,
		Token:   nextToken,
		IsEnd:   len(summaries) < historyPageSize,
	}, nil
}

// GetHistoryDetail reconstructs one past attempt exactly as it was presented.
// Pure read; reproducible for a given record.
func (s *formService) GetHistoryDetail(ctx context.Context, userID, historyID string) (*dto.HistoryDetailResponse, error) {
	record, err := s.historyRepo.GetHistoryByID(ctx, historyID)
	if err != nil {
		return nil, domain.NewInternalError("Query error", err)
	}
	if record == nil {
		return nil, domain.NewHistoryNotFoundError(historyID)
	}
	if record.UserID != userID {
		return nil, domain.NewForbiddenError("not id")
	}

	form, err := s.formRepo.GetFormByID(ctx, record.FormID)
	if err != nil {
		return nil, domain.NewInternalError("Query error", err)
	}
	if form == nil {
		return nil, domain.NewFormNotFoundError(record.FormID)
	}

	plaintext, err := util.DecryptIndex(record.FormQuestAnswerIndex, form.Key, form.IV)
	if err != nil {
		return nil, domain.NewInternalError("Failed to decrypt stored attempt index", err)
	}
	var index []domain.AttemptIndex
	if err := json.Unmarshal([]byte(plaintext), &index); err != nil {
		return nil, domain.NewInternalError("Failed to parse stored attempt index", err)
	}

	detail, err := form.ReconstructDetail(index, record.ErrorQuestionIndex, record.ErrorAnswerIndexs)
	if err != nil {
		return nil, domain.NewInternalError("Failed to reconstruct attempt", err)
	}

	questions := make([]dto.HistoryDetailQuestion, len(detail))
	for i, d := range detail {
		questions[i] = dto.HistoryDetailQuestion{
			Question:            d.Question,
			Options:             d.Options,
			IsError:             d.IsError,
			ErrorAnswerIndexs:   d.ErrorAnswerIndexs,
			CorrectAnswerIndexs: d.CorrectAnswerIndexs,
		}
	}

	return &dto.HistoryDetailResponse{
		Message:        "search successful",
		HistoryForm:    questions,
		FormName:       record.FormName,
		IsSingleChoice: form.IsSingleChoice,
	}, nil
}

func (s *formService) signPageToken(start int) (string, error) {
	claims := dto.PageClaims{
		Start: start,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.JWT.PageTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.SecretKey))
}

func (s *formService) parsePageToken(tokenString string) (*dto.PageClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.PageClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*dto.PageClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid page token")
	}
	return claims, nil
}
