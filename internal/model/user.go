// Package model defines domain entities for the application.
package model

import "time"

// Account tier constants.
const (
	TierFree = "free"
	TierPaid = "paid"
)

// User represents a registered account.
// RequestCount is mutated only by the quota gate's consume step.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize
	Tier         string    `json:"tier"`
	RequestCount int64     `json:"request_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity holds the authenticated principal for a request.
// This is injected into the request context by auth middleware.
type Identity struct {
	UserID   string
	Username string
	Tier     string
}
