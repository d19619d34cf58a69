package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Killo023/assignment-sub000/internal/models"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE accounts (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    usage_count INTEGER NOT NULL DEFAULT 0,
    usage_limit INTEGER NOT NULL DEFAULT 5,
    subscription_status TEXT NOT NULL DEFAULT 'trial',
    trial_ends_at TIMESTAMP,
    subscription_ends_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE submissions (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    title TEXT NOT NULL,
    category TEXT NOT NULL,
    original_content TEXT NOT NULL,
    generated_content TEXT NOT NULL DEFAULT '',
    output_format TEXT NOT NULL DEFAULT 'txt',
    status TEXT NOT NULL DEFAULT 'processing',
    metadata TEXT,
    share_token TEXT,
    storage_key TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	if _, err := db.Exec(
		`INSERT INTO accounts (id, email, usage_count, usage_limit, subscription_status, trial_ends_at, created_at)
		 VALUES ('acc-1', 'jo@example.com', 0, 5, 'trial', ?, ?)`,
		time.Now().Add(7*24*time.Hour), time.Now(),
	); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}

	return db
}

func newSubmission(id string, createdAt time.Time) *models.Submission {
	return &models.Submission{
		ID:              id,
		AccountID:       "acc-1",
		Title:           "essay",
		Category:        "History",
		OriginalContent: "sanitized text",
		OutputFormat:    "pdf",
		Metadata:        map[string]interface{}{"student": "Jo"},
		StorageKey:      "submissions/" + id + "/essay.txt",
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestSubmissionsCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissions(testDB(t))

	sub := newSubmission("sub-1", time.Now())
	sub.Status = "completed" // must be overridden
	if err := repo.Create(ctx, sub); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := repo.GetByID(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got == nil {
		t.Fatalf("GetByID returned nil for existing record")
	}

	if got.Status != models.StatusProcessing {
		t.Errorf("status = %q, want forced processing", got.Status)
	}
	if got.GeneratedContent != "" {
		t.Errorf("generated content = %q, want empty at creation", got.GeneratedContent)
	}
	if got.ShareToken != nil {
		t.Errorf("share token = %v, want nil at creation", *got.ShareToken)
	}
	if got.Metadata["student"] != "Jo" {
		t.Errorf("metadata round trip lost data: %v", got.Metadata)
	}
}

func TestSubmissionsGetMissing(t *testing.T) {
	repo := NewSubmissions(testDB(t))

	got, err := repo.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got != nil {
		t.Errorf("GetByID = %+v, want nil", got)
	}
}

func TestSubmissionsListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissions(testDB(t))

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"sub-old", "sub-mid", "sub-new"} {
		sub := newSubmission(id, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, sub); err != nil {
			t.Fatalf("Create(%s) returned error: %v", id, err)
		}
	}

	subs, err := repo.ListByAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("ListByAccount returned error: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("ListByAccount returned %d records, want 3", len(subs))
	}

	want := []string{"sub-new", "sub-mid", "sub-old"}
	for i, sub := range subs {
		if sub.ID != want[i] {
			t.Errorf("position %d = %q, want %q", i, sub.ID, want[i])
		}
	}
}

func TestSubmissionsFinalizeCompleted(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissions(testDB(t))

	if err := repo.Create(ctx, newSubmission("sub-1", time.Now())); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := repo.FinalizeCompleted(ctx, "sub-1", "the result", "token-123"); err != nil {
		t.Fatalf("FinalizeCompleted returned error: %v", err)
	}

	got, _ := repo.GetByID(ctx, "sub-1")
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.GeneratedContent != "the result" {
		t.Errorf("generated content = %q", got.GeneratedContent)
	}
	if got.ShareToken == nil || *got.ShareToken != "token-123" {
		t.Errorf("share token not persisted")
	}
}

func TestSubmissionsFinalizeFailed(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissions(testDB(t))

	if err := repo.Create(ctx, newSubmission("sub-1", time.Now())); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := repo.FinalizeFailed(ctx, "sub-1", "Generation failed: model overloaded"); err != nil {
		t.Fatalf("FinalizeFailed returned error: %v", err)
	}

	got, _ := repo.GetByID(ctx, "sub-1")
	if got.Status != models.StatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.GeneratedContent != "Generation failed: model overloaded" {
		t.Errorf("failure reason = %q", got.GeneratedContent)
	}
	if got.ShareToken != nil {
		t.Errorf("share token set on failed record")
	}
}

func TestSubmissionsFinalizeMissing(t *testing.T) {
	repo := NewSubmissions(testDB(t))

	if err := repo.FinalizeCompleted(context.Background(), "nope", "x", "y"); err == nil {
		t.Errorf("FinalizeCompleted on missing record did not error")
	}
}

func TestAccountsGetAndIncrement(t *testing.T) {
	ctx := context.Background()
	repo := NewAccounts(testDB(t))

	acc, err := repo.GetByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if acc == nil {
		t.Fatalf("GetByID returned nil for seeded account")
	}
	if acc.UsageCount != 0 || acc.UsageLimit != 5 {
		t.Errorf("usage = %d/%d, want 0/5", acc.UsageCount, acc.UsageLimit)
	}
	if acc.SubscriptionStatus != models.SubscriptionTrial {
		t.Errorf("subscription status = %q, want trial", acc.SubscriptionStatus)
	}

	if err := repo.IncrementUsage(ctx, "acc-1"); err != nil {
		t.Fatalf("IncrementUsage returned error: %v", err)
	}

	acc, _ = repo.GetByID(ctx, "acc-1")
	if acc.UsageCount != 1 {
		t.Errorf("usage count = %d after increment, want 1", acc.UsageCount)
	}
}

func TestAccountsGetMissing(t *testing.T) {
	repo := NewAccounts(testDB(t))

	acc, err := repo.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if acc != nil {
		t.Errorf("GetByID = %+v, want nil", acc)
	}
}

func TestAccountsIncrementMissing(t *testing.T) {
	repo := NewAccounts(testDB(t))

	if err := repo.IncrementUsage(context.Background(), "nope"); err == nil {
		t.Errorf("IncrementUsage on missing account did not error")
	}
}
