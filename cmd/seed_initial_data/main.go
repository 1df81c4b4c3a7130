package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quizform/database"
	"quizform/internal/config"
	"quizform/internal/domain"
	"quizform/internal/logger"
	"quizform/internal/repository"
	"quizform/internal/util"

	"go.uber.org/zap"
)

const seedFilePath = "config/seed_data/initial_forms.json"

type seedUser struct {
	Email       string `json:"email"`
	UserName    string `json:"userName"`
	Appellation string `json:"appellation"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type seedForm struct {
	FormName       string            `json:"formName"`
	AuthorEmail    string            `json:"authorEmail"`
	IsSingleChoice bool              `json:"isSingleChoice"`
	IsRandomized   bool              `json:"isRandomized"`
	Questions      []domain.Question `json:"questions"`
	CorrectAnswer  [][]int           `json:"correctAnswer"`
}

type seedFile struct {
	Users []seedUser `json:"users"`
	Forms []seedForm `json:"forms"`
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting initial data seeding process...")
	db, err := database.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}

	var data seedFile
	if err := json.Unmarshal(byteValue, &data); err != nil {
		log.Fatal("Failed to parse seed file", zap.Error(err))
	}

	userRepo := repository.NewSQLXUserRepository(db)
	formRepo := repository.NewSQLXFormRepository(db)
	keyIssuer := util.RandomKeyIssuer{}

	authorIDs := make(map[string]string, len(data.Users))
	for _, u := range data.Users {
		existing, err := userRepo.GetUserByEmail(ctx, u.Email)
		if err != nil {
			log.Fatal("User lookup failed", zap.String("email", u.Email), zap.Error(err))
		}
		if existing != nil {
			log.Info("User already seeded", zap.String("email", u.Email))
			authorIDs[u.Email] = existing.ID
			continue
		}

		user := &domain.User{
			ID:           util.NewULID(),
			Email:        u.Email,
			UserName:     u.UserName,
			Appellation:  u.Appellation,
			PasswordHash: util.HashPassword(u.Password),
			Role:         domain.Role(u.Role),
			Verified:     true,
		}
		if err := user.Validate(); err != nil {
			log.Fatal("Seed user is invalid", zap.String("email", u.Email), zap.Error(err))
		}
		if err := userRepo.CreateUser(ctx, user); err != nil {
			log.Fatal("Failed to seed user", zap.String("email", u.Email), zap.Error(err))
		}
		authorIDs[u.Email] = user.ID
		log.Info("Seeded user", zap.String("email", u.Email), zap.String("role", u.Role))
	}

	for _, f := range data.Forms {
		authorID, ok := authorIDs[f.AuthorEmail]
		if !ok {
			log.Fatal("Form references unknown author", zap.String("formName", f.FormName), zap.String("authorEmail", f.AuthorEmail))
		}

		key, iv, err := keyIssuer.NewKeyPair()
		if err != nil {
			log.Fatal("Failed to generate key material", zap.Error(err))
		}

		form := domain.NewForm(f.FormName, authorID, f.IsSingleChoice, f.IsRandomized, f.Questions, f.CorrectAnswer, key, iv)
		if err := form.Validate(); err != nil {
			log.Fatal("Seed form is invalid", zap.String("formName", f.FormName), zap.Error(err))
		}
		if err := formRepo.CreateForm(ctx, form); err != nil {
			log.Fatal("Failed to seed form", zap.String("formName", f.FormName), zap.Error(err))
		}
		log.Info("Seeded form", zap.String("formName", f.FormName), zap.Int("questions", len(f.Questions)))
	}

	log.Info("Seeding completed")
}
