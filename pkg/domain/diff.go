package domain

import (
	"reflect"
)

// SnapshotDiff represents the changes between two session snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Step         *Step          `json:"step,omitempty"`
	CustomerName *string        `json:"customer_name,omitempty"`
	NameError    *string        `json:"name_error,omitempty"`
	Draft        *DraftSnapshot `json:"draft,omitempty"`

	// Cart is append-only between clears, so only new lines are sent.
	Cart  *CartDelta `json:"cart,omitempty"`
	Total *int       `json:"total,omitempty"`
}

// CartDelta carries cart changes. When Cleared is set, clients drop their
// lines before applying Appended.
type CartDelta struct {
	Cleared  bool       `json:"cleared,omitempty"`
	Appended []LineItem `json:"appended,omitempty"`
}

// Diff calculates the difference between two snapshots of the same session.
// If old is nil, it returns a diff representing the entire new snapshot (initial load).
// It returns nil when nothing changed.
func Diff(sessionID string, old, new *SessionSnapshot) *SnapshotDiff {
	if new == nil {
		return nil
	}

	diff := &SnapshotDiff{SessionID: sessionID}

	if old == nil || old.Step != new.Step {
		diff.Step = &new.Step
	}
	if old == nil || old.CustomerName != new.CustomerName {
		diff.CustomerName = &new.CustomerName
	}
	if old == nil || old.NameError != new.NameError {
		diff.NameError = &new.NameError
	}
	if old == nil || old.Draft != new.Draft {
		diff.Draft = &new.Draft
	}
	if old == nil || old.Total != new.Total {
		diff.Total = &new.Total
	}

	diff.Cart = diffCart(old, new)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffCart(old, new *SessionSnapshot) *CartDelta {
	if old == nil {
		if len(new.Cart) == 0 {
			return nil
		}
		return &CartDelta{Appended: new.Cart}
	}

	oldLen, newLen := len(old.Cart), len(new.Cart)
	switch {
	case newLen > oldLen && reflect.DeepEqual(old.Cart, new.Cart[:oldLen]):
		return &CartDelta{Appended: new.Cart[oldLen:]}
	case newLen == oldLen && reflect.DeepEqual(old.Cart, new.Cart):
		return nil
	default:
		// Lines never change in place, so anything else is a clear (maybe followed by adds).
		return &CartDelta{Cleared: true, Appended: new.Cart}
	}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Step == nil &&
		d.CustomerName == nil &&
		d.NameError == nil &&
		d.Draft == nil &&
		d.Cart == nil &&
		d.Total == nil
}
