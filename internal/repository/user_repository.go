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

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		UserName:     m.UserName,
		Appellation:  m.Appellation.String,
		PasswordHash: m.Password,
		Role:         domain.Role(m.Role),
		Verified:     m.Verified,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

const userColumns = `ID, EMAIL, USER_NAME, APPELLATION, PASSWORD, USER_ROLE, VERIFIED, CREATED_AT, UPDATED_AT`

// CreateUser inserts a new user.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = util.NewULID()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `INSERT INTO users (ID, EMAIL, USER_NAME, APPELLATION, PASSWORD, USER_ROLE, VERIFIED, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.UserName,
		util.StringToNullString(user.Appellation),
		user.PasswordHash,
		string(user.Role),
		user.Verified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID fetches a user by primary key. Returns (nil, nil) when absent.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ID = :1`

	var model models.User
	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &model, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return toDomainUser(&model), nil
}

// GetUserByEmail fetches a user by email. Returns (nil, nil) when absent.
func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE EMAIL = :1`

	var model models.User
	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &model, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toDomainUser(&model), nil
}
