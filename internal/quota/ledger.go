package quota

import (
	"context"
	"time"

	"github.com/Killo023/assignment-sub000/internal/repository"
	"github.com/Killo023/assignment-sub000/internal/utils"
)

// Ledger decides whether an account may submit and records consumption.
//
// Authorize combines the entitlement window and the usage ceiling into one
// decision. Two concurrent submissions can still both pass and push
// usage_count past usage_limit; consumption is not serialized per account
// and no compensating decrement exists when a later step fails.
type Ledger interface {
	Authorize(ctx context.Context, accountID string) error
	Consume(ctx context.Context, accountID string) error
}

type ledger struct {
	accounts repository.Accounts
	now      func() time.Time
}

func NewLedger(accounts repository.Accounts) Ledger {
	return &ledger{accounts: accounts, now: time.Now}
}

func (l *ledger) Authorize(ctx context.Context, accountID string) error {
	acc, err := l.accounts.GetByID(ctx, accountID)
	if err != nil {
		return utils.NewInternalError("Failed to load account")
	}
	if acc == nil {
		return utils.NewForbiddenError("Account not found")
	}

	if !acc.Entitled(l.now()) {
		return utils.NewForbiddenError("Your trial has expired. Please upgrade to continue submitting documents")
	}

	if acc.UsageCount >= acc.UsageLimit {
		return utils.NewForbiddenError("Monthly submission limit reached")
	}

	return nil
}

func (l *ledger) Consume(ctx context.Context, accountID string) error {
	return l.accounts.IncrementUsage(ctx, accountID)
}
