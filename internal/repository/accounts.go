package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Killo023/assignment-sub000/internal/models"
	"github.com/jmoiron/sqlx"
)

// Accounts exposes the quota fields of the account entity. The entity is
// owned by the auth/billing layer; this service only reads it and bumps
// usage_count.
type Accounts interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	IncrementUsage(ctx context.Context, id string) error
}

type accounts struct {
	db *sqlx.DB
}

func NewAccounts(db *sqlx.DB) Accounts {
	return &accounts{db: db}
}

func (r *accounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var acc models.Account

	query := `
		SELECT id, email, usage_count, usage_limit, subscription_status,
		       trial_ends_at, subscription_ends_at, created_at
		FROM accounts
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&acc.ID,
		&acc.Email,
		&acc.UsageCount,
		&acc.UsageLimit,
		&acc.SubscriptionStatus,
		&acc.TrialEndsAt,
		&acc.SubscriptionEndsAt,
		&acc.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

func (r *accounts) IncrementUsage(ctx context.Context, id string) error {
	query := `UPDATE accounts SET usage_count = usage_count + 1 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %s not found", id)
	}

	return nil
}
