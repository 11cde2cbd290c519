package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"shaggydog/internal/services"
)

// Store manages persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CreateUser inserts a new account. Duplicate usernames are reported as a
// validation error.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create user", "Username is required", nil)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO dog_users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, passwordHash, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, services.Wrap(services.ErrValidation, "store", "create user", "Username already taken", nil)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// UserByUsername looks up an account by its username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM dog_users WHERE username = ?",
		strings.TrimSpace(username),
	)
	return scanUser(row)
}

// UserByID looks up an account by its primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM dog_users WHERE id = ?", id,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	var createdAt string
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get user", "user not found", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = parseTimestamp(createdAt)
	return &user, nil
}

// InsertTransformation stores a completed pipeline result and returns its
// row ID.
func (s *Store) InsertTransformation(ctx context.Context, t *Transformation) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("nil transformation")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO dog_transformations (
            user_id, dog_breed, original_image,
            transition1_image, transition2_image, final_dog_image, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Breed, t.Original, t.Transition1, t.Transition2, t.FinalDog,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert transformation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	return id, nil
}

// TransformationByID fetches a full transformation, blobs included. Callers
// pass the owning user so one account cannot read another's rows.
func (s *Store) TransformationByID(ctx context.Context, userID, id int64) (*Transformation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, dog_breed, original_image,
                transition1_image, transition2_image, final_dog_image, created_at
         FROM dog_transformations WHERE id = ? AND user_id = ?`, id, userID,
	)
	var t Transformation
	var createdAt string
	err := row.Scan(&t.ID, &t.UserID, &t.Breed, &t.Original,
		&t.Transition1, &t.Transition2, &t.FinalDog, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get transformation", "transformation not found", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("scan transformation: %w", err)
	}
	t.CreatedAt = parseTimestamp(createdAt)
	return &t, nil
}

// TransformationImage fetches a single image column for a transformation.
func (s *Store) TransformationImage(ctx context.Context, userID, id int64, kind ImageKind) ([]byte, error) {
	column, ok := imageColumn(kind)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "store", "get image", "unknown image kind", nil)
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+column+" FROM dog_transformations WHERE id = ? AND user_id = ?", id, userID,
	)
	var data []byte
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get image", "transformation not found", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("scan image: %w", err)
	}
	return data, nil
}

// ListTransformations returns gallery summaries for a user, newest first.
func (s *Store) ListTransformations(ctx context.Context, userID int64) ([]TransformationSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, dog_breed, created_at
         FROM dog_transformations WHERE user_id = ?
         ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transformations: %w", err)
	}
	defer rows.Close()

	summaries := make([]TransformationSummary, 0)
	for rows.Next() {
		var summary TransformationSummary
		var createdAt string
		if err := rows.Scan(&summary.ID, &summary.UserID, &summary.Breed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary.CreatedAt = parseTimestamp(createdAt)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// CountTransformations reports how many transformations a user has stored.
func (s *Store) CountTransformations(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM dog_transformations WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transformations: %w", err)
	}
	return count, nil
}

// DeleteTransformation removes a user's transformation.
func (s *Store) DeleteTransformation(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM dog_transformations WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete transformation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "store", "delete transformation", "transformation not found", nil)
	}
	return nil
}

func imageColumn(kind ImageKind) (string, bool) {
	switch kind {
	case ImageOriginal:
		return "original_image", true
	case ImageTransition1:
		return "transition1_image", true
	case ImageTransition2:
		return "transition2_image", true
	case ImageFinalDog:
		return "final_dog_image", true
	}
	return "", false
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
