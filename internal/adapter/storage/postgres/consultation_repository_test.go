//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/lib/pq"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/pkg/config"
)

// setupDatabase uses DATABASE_URL when set (CI) and a throwaway container
// otherwise.
func setupDatabase(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	ctx := context.Background()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("symptom_test"),
			tcpostgres.WithUsername("symptom"),
			tcpostgres.WithPassword("symptom_test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			t.Fatalf("Failed to start postgres container: %v", err)
		}
		t.Cleanup(func() {
			if err := container.Terminate(ctx); err != nil {
				t.Logf("Failed to terminate postgres container: %v", err)
			}
		})

		url, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("Failed to get connection string: %v", err)
		}
	}

	logger, _ := zap.NewDevelopment()
	db, err := NewConnection(config.DatabaseConfig{URL: url, MaxOpenConns: 5, MaxIdleConns: 2}, logger)
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	t.Cleanup(func() { Close(db) })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db, url
}

func newConsultation(sessionID string, createdAt time.Time) *domain.Consultation {
	return &domain.Consultation{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		SymptomInput:     "I have a fever",
		AIResponse:       "Rest and drink fluids.",
		ConfidenceScore:  "80%",
		SuggestionType:   domain.SuggestionRest,
		LanguageSelected: domain.LanguageEnglish,
		CreatedAt:        createdAt,
	}
}

func TestConsultationRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db, _ := setupDatabase(t)
	logger, _ := zap.NewDevelopment()
	repo := NewConsultationRepository(db, logger)
	ctx := context.Background()
	c := newConsultation("session-a", time.Now().UTC().Truncate(time.Millisecond))

	// Act
	if err := repo.Save(ctx, c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	found, err := repo.FindByID(ctx, c.ID)

	// Assert
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found == nil {
		t.Fatal("expected consultation to be found")
	}
	if found.SymptomInput != c.SymptomInput || found.SuggestionType != c.SuggestionType {
		t.Errorf("unexpected consultation: %+v", found)
	}

	missing, err := repo.FindByID(ctx, uuid.NewString())
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown id; got %v, %v", missing, err)
	}
}

func TestConsultationRepository_Lists(t *testing.T) {
	// Arrange
	db, _ := setupDatabase(t)
	logger, _ := zap.NewDevelopment()
	repo := NewConsultationRepository(db, logger)
	ctx := context.Background()
	session := uuid.NewString()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		if err := repo.Save(ctx, newConsultation(session, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	repo.Save(ctx, newConsultation(uuid.NewString(), base.Add(time.Minute)))

	// Act
	bySession, err := repo.ListBySession(ctx, session)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}

	// Assert
	if len(bySession) != 3 {
		t.Fatalf("expected 3 consultations, got %d", len(bySession))
	}
	if !bySession[0].CreatedAt.Before(bySession[2].CreatedAt) {
		t.Error("ListBySession should be oldest first")
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent consultations, got %d", len(recent))
	}
	if recent[0].CreatedAt.Before(recent[1].CreatedAt) {
		t.Error("ListRecent should be newest first")
	}
}

func TestRunMigrations_CreatesTable(t *testing.T) {
	// Arrange
	_, url := setupDatabase(t)
	raw, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer raw.Close()

	// Act
	var count int
	err = raw.QueryRow(`SELECT COUNT(*) FROM information_schema.columns WHERE table_name = 'consultations'`).Scan(&count)

	// Assert
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if count != 8 {
		t.Errorf("consultations has %d columns, want 8", count)
	}
}
