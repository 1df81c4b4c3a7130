package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizform/internal/domain"
	"quizform/internal/repository/models"
	"quizform/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxFormRepository implements domain.FormRepository using sqlx.
type sqlxFormRepository struct {
	db *sqlx.DB
}

// NewSQLXFormRepository creates a new instance of sqlxFormRepository.
func NewSQLXFormRepository(db *sqlx.DB) domain.FormRepository {
	return &sqlxFormRepository{db: db}
}

func toDomainForm(m *models.Form) *domain.Form {
	if m == nil {
		return nil
	}
	questions := make([]domain.Question, len(m.Questions))
	for i, q := range m.Questions {
		questions[i] = domain.Question{Question: q.Question, Options: q.Options}
	}
	return &domain.Form{
		ID:             m.ID,
		FormName:       m.FormName,
		AuthorID:       m.AuthorID,
		IsSingleChoice: m.IsSingleChoice,
		IsRandomized:   m.IsRandomized,
		Questions:      questions,
		CorrectAnswer:  m.CorrectAnswer,
		Key:            m.FormKey,
		IV:             m.FormIV,
		FormCreateTime: m.FormCreateTime,
	}
}

func fromDomainForm(f *domain.Form) *models.Form {
	if f == nil {
		return nil
	}
	questions := make(models.QuestionList, len(f.Questions))
	for i, q := range f.Questions {
		questions[i] = models.Question{Question: q.Question, Options: q.Options}
	}
	return &models.Form{
		ID:             f.ID,
		FormName:       f.FormName,
		AuthorID:       f.AuthorID,
		IsSingleChoice: f.IsSingleChoice,
		IsRandomized:   f.IsRandomized,
		Questions:      questions,
		CorrectAnswer:  models.IntMatrix(f.CorrectAnswer),
		FormKey:        f.Key,
		FormIV:         f.IV,
		FormCreateTime: f.FormCreateTime,
	}
}

// CreateForm inserts a new form definition.
func (r *sqlxFormRepository) CreateForm(ctx context.Context, form *domain.Form) error {
	model := fromDomainForm(form)
	if model.ID == "" {
		model.ID = util.NewULID()
		form.ID = model.ID
	}
	if model.FormCreateTime.IsZero() {
		model.FormCreateTime = time.Now()
	}

	questionsVal, err := model.Questions.Value()
	if err != nil {
		return fmt.Errorf("failed to serialize questions: %w", err)
	}
	correctVal, err := model.CorrectAnswer.Value()
	if err != nil {
		return fmt.Errorf("failed to serialize correct answers: %w", err)
	}

	query := `INSERT INTO forms (ID, FORM_NAME, AUTHOR_ID, IS_SINGLE_CHOICE, IS_RANDOMIZED, QUESTIONS, CORRECT_ANSWER, FORM_KEY, FORM_IV, FORM_CREATE_TIME)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10)`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		model.ID,
		model.FormName,
		model.AuthorID,
		model.IsSingleChoice,
		model.IsRandomized,
		questionsVal,
		correctVal,
		model.FormKey,
		model.FormIV,
		model.FormCreateTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

// GetFormByID fetches a form definition. It returns (nil, nil) when no row
// exists, leaving not-found semantics to the service layer.
func (r *sqlxFormRepository) GetFormByID(ctx context.Context, id string) (*domain.Form, error) {
	query := `SELECT ID, FORM_NAME, AUTHOR_ID, IS_SINGLE_CHOICE, IS_RANDOMIZED, QUESTIONS, CORRECT_ANSWER, FORM_KEY, FORM_IV, FORM_CREATE_TIME
	          FROM forms WHERE ID = :1`

	var model models.Form
	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &model, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get form %s: %w", id, err)
	}
	return toDomainForm(&model), nil
}

// GetForms returns a page of form summaries, newest first, optionally
// filtered by a form-name prefix.
func (r *sqlxFormRepository) GetForms(ctx context.Context, searchFormName string, offset, limit int) ([]domain.FormSummary, error) {
	query := `SELECT f.ID, f.FORM_NAME, f.FORM_CREATE_TIME, u.USER_NAME AS AUTHOR_NAME
	          FROM forms f
	          JOIN users u ON u.ID = f.AUTHOR_ID
	          WHERE (:1 IS NULL OR f.FORM_NAME LIKE :2 || '%')
	          ORDER BY f.FORM_CREATE_TIME DESC
	          OFFSET :3 ROWS FETCH NEXT :4 ROWS ONLY`

	search := util.StringToNullString(searchFormName)

	rows := []struct {
		ID             string    `db:"ID"`
		FormName       string    `db:"FORM_NAME"`
		FormCreateTime time.Time `db:"FORM_CREATE_TIME"`
		AuthorName     string    `db:"AUTHOR_NAME"`
	}{}
	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &rows, query, search, search, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	summaries := make([]domain.FormSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.FormSummary{
			ID:             row.ID,
			FormName:       row.FormName,
			AuthorName:     row.AuthorName,
			FormCreateTime: row.FormCreateTime,
		})
	}
	return summaries, nil
}

// CountForms counts the forms matching the optional name-prefix filter.
func (r *sqlxFormRepository) CountForms(ctx context.Context, searchFormName string) (int, error) {
	query := `SELECT COUNT(*) FROM forms WHERE (:1 IS NULL OR FORM_NAME LIKE :2 || '%')`

	search := util.StringToNullString(searchFormName)

	var count int
	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &count, query, search, search); err != nil {
		return 0, fmt.Errorf("failed to count forms: %w", err)
	}
	return count, nil
}
