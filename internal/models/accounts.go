package models

import (
	"time"
)

// Subscription states the pipeline reads. Billing owns the transitions;
// this service never writes subscription_status.
const (
	SubscriptionNone    = "none"
	SubscriptionTrial   = "trial"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Account carries the quota and entitlement fields read by the ingestion
// pipeline. The account entity itself is owned by the excluded auth/billing
// layer; usage_count is the only field this service mutates.
type Account struct {
	ID                 string     `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	UsageCount         int        `json:"usage_count" db:"usage_count"`
	UsageLimit         int        `json:"usage_limit" db:"usage_limit"`
	SubscriptionStatus string     `json:"subscription_status" db:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty" db:"subscription_ends_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

// Entitled reports whether the account's trial or paid subscription window
// is currently open. Quota is checked separately.
func (a *Account) Entitled(now time.Time) bool {
	switch a.SubscriptionStatus {
	case SubscriptionTrial:
		return a.TrialEndsAt != nil && now.Before(*a.TrialEndsAt)
	case SubscriptionActive:
		return a.SubscriptionEndsAt == nil || now.Before(*a.SubscriptionEndsAt)
	default:
		return false
	}
}
