package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Killo023/assignment-sub000/internal/models"
	"github.com/jmoiron/sqlx"
)

// Submissions persists submission records. A record is created once in
// processing state and finalized once by the generation tail; callers own
// that single-writer discipline, the store does not arbitrate races.
type Submissions interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Submission, error)
	FinalizeCompleted(ctx context.Context, id, generatedContent, shareToken string) error
	FinalizeFailed(ctx context.Context, id, reason string) error
}

type submissions struct {
	db *sqlx.DB
}

func NewSubmissions(db *sqlx.DB) Submissions {
	return &submissions{db: db}
}

func (r *submissions) Create(ctx context.Context, sub *models.Submission) error {
	metadataJSON, err := json.Marshal(sub.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	// Status is forced here: every record starts out processing.
	sub.Status = models.StatusProcessing

	query := `
		INSERT INTO submissions (id, account_id, title, category, original_content, generated_content,
		                         output_format, status, metadata, storage_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '', $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		sub.ID,
		sub.AccountID,
		sub.Title,
		sub.Category,
		sub.OriginalContent,
		sub.OutputFormat,
		sub.Status,
		string(metadataJSON),
		sub.StorageKey,
		sub.CreatedAt,
		sub.UpdatedAt,
	)

	return err
}

func (r *submissions) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `
		SELECT id, account_id, title, category, original_content, generated_content,
		       output_format, status, metadata, share_token, storage_key, created_at, updated_at
		FROM submissions
		WHERE id = $1
	`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (r *submissions) ListByAccount(ctx context.Context, accountID string) ([]*models.Submission, error) {
	query := `
		SELECT id, account_id, title, category, original_content, generated_content,
		       output_format, status, metadata, share_token, storage_key, created_at, updated_at
		FROM submissions
		WHERE account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sub)
	}

	return result, rows.Err()
}

func (r *submissions) FinalizeCompleted(ctx context.Context, id, generatedContent, shareToken string) error {
	query := `
		UPDATE submissions
		SET status = $2, generated_content = $3, share_token = $4, updated_at = $5
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, models.StatusCompleted, generatedContent, shareToken, time.Now())
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (r *submissions) FinalizeFailed(ctx context.Context, id, reason string) error {
	query := `
		UPDATE submissions
		SET status = $2, generated_content = $3, updated_at = $4
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, models.StatusFailed, reason, time.Now())
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("submission %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var sub models.Submission
	var metadataJSON sql.NullString
	var shareToken sql.NullString

	err := row.Scan(
		&sub.ID,
		&sub.AccountID,
		&sub.Title,
		&sub.Category,
		&sub.OriginalContent,
		&sub.GeneratedContent,
		&sub.OutputFormat,
		&sub.Status,
		&metadataJSON,
		&shareToken,
		&sub.StorageKey,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &sub.Metadata); err != nil {
			return nil, err
		}
	}
	if shareToken.Valid {
		sub.ShareToken = &shareToken.String
	}

	return &sub, nil
}
