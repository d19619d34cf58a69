package utils

import "github.com/google/uuid"

// GenerateID returns a new opaque identifier for a submission.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateShareToken mints the token published when a submission completes.
func GenerateShareToken() string {
	return uuid.NewString()
}
