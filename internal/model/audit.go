// Package model defines domain entities for the application.
package model

import "time"

// Audit holds the who/when trail for an entity: who created it, who
// last updated it, and who soft-deleted it. Entities embed it by
// value; the stamp methods are pure and return a new Audit.
type Audit struct {
	CreatedBy   string     `json:"created_by"`
	CreatedDate time.Time  `json:"created_date"`
	UpdatedBy   string     `json:"updated_by,omitempty"`
	UpdatedDate *time.Time `json:"updated_date,omitempty"`
	DeletedBy   string     `json:"deleted_by,omitempty"`
	DeletedDate *time.Time `json:"deleted_date,omitempty"`
}

// StampCreate records the creating actor and time.
// CreatedDate is set once here and never touched again.
func (a Audit) StampCreate(actor string, now time.Time) Audit {
	a.CreatedBy = actor
	a.CreatedDate = now
	return a
}

// StampUpdate records the updating actor and time, leaving the
// creation trail untouched.
func (a Audit) StampUpdate(actor string, now time.Time) Audit {
	a.UpdatedBy = actor
	a.UpdatedDate = &now
	return a
}

// StampDelete records the soft-deleting actor and time. A later
// re-activation does not clear these fields: the deletion trail is
// kept as historical record.
func (a Audit) StampDelete(actor string, now time.Time) Audit {
	a.DeletedBy = actor
	a.DeletedDate = &now
	return a
}

// WasDeleted reports whether the record has been soft-deleted at
// least once in its lifetime.
func (a Audit) WasDeleted() bool {
	return a.DeletedDate != nil
}
