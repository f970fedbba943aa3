// Package records keeps a local, ordered cache of server-owned records in
// step with a REST backend. The local collection only advances from
// authoritative server responses; failures leave it exactly as it was.
package records

import (
	"context"
	"strings"

	appErrors "tally/internal/errors"
)

// Record is any server-owned entity addressable by a unique identifier.
type Record interface {
	RecordID() string
}

// Draft is a client-side staging buffer for a create or update request.
type Draft interface {
	Validate() error
}

// Lister is the read half of a record endpoint.
type Lister[R any] interface {
	List(ctx context.Context) ([]R, error)
}

// Endpoint is a REST resource supporting list, create, update and delete.
type Endpoint[R any, D any] interface {
	Lister[R]
	Create(ctx context.Context, draft D) (R, error)
	Update(ctx context.Context, id string, draft D) (R, error)
	Delete(ctx context.Context, id string) error
}

// Item is a per-user todo entry.
type Item struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// RecordID implements Record.
func (i Item) RecordID() string { return i.ID }

// ItemDraft holds the mutable fields of an Item.
type ItemDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Validate requires a non-blank title and description. The server remains
// the authority; this only keeps obviously incomplete drafts off the wire.
func (d ItemDraft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) == 0 {
		return nil
	}
	return appErrors.New(appErrors.CodeValidation, strings.Join(missing, " and ")+" required", nil)
}

// DraftFromItem copies the mutable fields of it into a draft.
func DraftFromItem(it Item) ItemDraft {
	return ItemDraft{
		Title:       it.Title,
		Description: it.Description,
		Completed:   it.Completed,
	}
}

// User is an account as listed by the admin endpoint.
type User struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// RecordID implements Record. Users are keyed by username.
func (u User) RecordID() string { return u.Username }
