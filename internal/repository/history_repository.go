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

// sqlxHistoryRepository implements domain.HistoryRepository using sqlx.
type sqlxHistoryRepository struct {
	db *sqlx.DB
}

// NewSQLXHistoryRepository creates a new instance of sqlxHistoryRepository.
func NewSQLXHistoryRepository(db *sqlx.DB) domain.HistoryRepository {
	return &sqlxHistoryRepository{db: db}
}

func toDomainHistory(m *models.HistoryForm) *domain.HistoryForm {
	if m == nil {
		return nil
	}
	return &domain.HistoryForm{
		ID:                    m.ID,
		UserID:                m.UserID,
		FormID:                m.FormID,
		FormName:              m.FormName,
		Score:                 m.Score,
		ErrorQuestionIndex:    m.ErrorQuestionIndex,
		ErrorAnswerIndexs:     m.ErrorAnswerIndexs,
		FormQuestAnswerIndex:  m.FormQuestAnswerIndex,
		HistoryFormCreateTime: m.HistoryFormCreateTime,
	}
}

// CreateHistory inserts one graded attempt. The record is immutable after
// this write.
func (r *sqlxHistoryRepository) CreateHistory(ctx context.Context, history *domain.HistoryForm) error {
	if history.ID == "" {
		history.ID = util.NewULID()
	}
	if history.HistoryFormCreateTime.IsZero() {
		history.HistoryFormCreateTime = time.Now()
	}

	errQuestVal, err := models.IntSlice(history.ErrorQuestionIndex).Value()
	if err != nil {
		return fmt.Errorf("failed to serialize error question index: %w", err)
	}
	errAnswerVal, err := models.IntMatrix(history.ErrorAnswerIndexs).Value()
	if err != nil {
		return fmt.Errorf("failed to serialize error answer indexes: %w", err)
	}

	query := `INSERT INTO history_forms (ID, USER_ID, FORM_ID, FORM_NAME, SCORE, ERROR_QUESTION_INDEX, ERROR_ANSWER_INDEXS, FORM_QUEST_ANSWER_INDEX, HISTORY_FORM_CREATE_TIME)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		history.ID,
		history.UserID,
		history.FormID,
		history.FormName,
		history.Score,
		errQuestVal,
		errAnswerVal,
		history.FormQuestAnswerIndex,
		history.HistoryFormCreateTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create history record: %w", err)
	}
	return nil
}

// GetHistoryByID fetches one attempt record. Returns (nil, nil) when absent.
func (r *sqlxHistoryRepository) GetHistoryByID(ctx context.Context, id string) (*domain.HistoryForm, error) {
	query := `SELECT ID, USER_ID, FORM_ID, FORM_NAME, SCORE, ERROR_QUESTION_INDEX, ERROR_ANSWER_INDEXS, FORM_QUEST_ANSWER_INDEX, HISTORY_FORM_CREATE_TIME
	          FROM history_forms WHERE ID = :1`

	var model models.HistoryForm
	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &model, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get history record %s: %w", id, err)
	}
	return toDomainHistory(&model), nil
}

// GetHistoriesByUserID returns a page of the user's attempts, newest first.
func (r *sqlxHistoryRepository) GetHistoriesByUserID(ctx context.Context, userID string, offset, limit int) ([]domain.HistorySummary, error) {
	query := `SELECT ID, FORM_NAME, FORM_ID, SCORE, HISTORY_FORM_CREATE_TIME
	          FROM history_forms
	          WHERE USER_ID = :1
	          ORDER BY HISTORY_FORM_CREATE_TIME DESC
	          OFFSET :2 ROWS FETCH NEXT :3 ROWS ONLY`

	rows := []struct {
		ID                    string    `db:"ID"`
		FormName              string    `db:"FORM_NAME"`
		FormID                string    `db:"FORM_ID"`
		Score                 int       `db:"SCORE"`
		HistoryFormCreateTime time.Time `db:"HISTORY_FORM_CREATE_TIME"`
	}{}
	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &rows, query, userID, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list history records: %w", err)
	}

	summaries := make([]domain.HistorySummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.HistorySummary{
			ID:                    row.ID,
			FormName:              row.FormName,
			FormID:                row.FormID,
			Score:                 row.Score,
			HistoryFormCreateTime: row.HistoryFormCreateTime,
		})
	}
	return summaries, nil
}
