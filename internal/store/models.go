package store

import (
	"encoding/json"
	"time"
)

// Project is the record keyed by project id. BaselineID is empty until a
// handoff attaches a baseline; once set it may only change through the
// guarded write path in CommitHandoff.
type Project struct {
	ID            string
	BaselineID    string
	Name          string
	Code          string
	ClientName    string
	Currency      string
	Description   string
	ModTotal      float64
	PctIngenieros float64
	PctSDM        float64
	Responsible   string
	AcceptedBy    string
	AcceptedAt    *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Handoff is written once per successful resolution and never mutated.
type Handoff struct {
	ID         string
	ProjectID  string
	BaselineID string
	Payload    json.RawMessage
	Actor      string
	CreatedAt  time.Time
}

// AuditEntry is an append-only before/after snapshot of a mutation attempt.
type AuditEntry struct {
	ID        int64
	Action    string
	ProjectID string
	Before    json.RawMessage
	After     json.RawMessage
	Actor     string
	CreatedAt time.Time
}

// Rubro is a budget line-item category from the catalog.
type Rubro struct {
	ID        string
	Name      string
	Category  string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
