package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userCols = []string{"id", "email", "password_hash", "full_name", "picture_url", "created_at", "updated_at"}

func newMock(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("user-1", "a@example.com", "hash", nil, nil).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("user-1", "a@example.com", "hash", nil, nil, now, now))

	user, err := repo.Create(context.Background(), User{ID: "user-1", Email: "a@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.PasswordHash != "hash" || user.FullName != "" {
		t.Fatalf("unexpected user: %#v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateDuplicate(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	if _, err := repo.Create(context.Background(), User{ID: "user-1", Email: "a@example.com"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPGRepoGetByEmailNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpsertReturnsStoredRow(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery("ON CONFLICT \\(email\\) DO UPDATE").
		WithArgs("google:1", "a@example.com", "Ada", "https://pic").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("user-1", "a@example.com", "hash", "Ada", "https://pic", now, now))

	user, err := repo.Upsert(context.Background(), User{ID: "google:1", Email: "a@example.com", FullName: "Ada", PictureURL: "https://pic"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected existing id, got %q", user.ID)
	}
}
