package runtime

import (
	"fmt"

	"github.com/aretw0/barista/pkg/domain"
)

// Session is the state of one customer's conversation. The zero value is
// not usable; create sessions with NewSession or Engine.Start.
//
// A Session is not safe for concurrent use. Hosts serving several users
// give each user its own Session.
type Session struct {
	step         domain.Step
	customerName string
	nameError    string
	draft        domain.Draft
	cart         domain.Cart
}

// NewSession returns a session at Welcome with an empty cart.
func NewSession() *Session {
	return &Session{step: domain.StepWelcome}
}

// Reset returns the session to its initial state.
func (s *Session) Reset() {
	*s = Session{step: domain.StepWelcome}
}

func (s *Session) Step() domain.Step {
	return s.step
}

// CustomerName returns the validated, title-cased name once NameEntry succeeded.
func (s *Session) CustomerName() (string, bool) {
	return s.customerName, s.customerName != ""
}

// NameError is the message of the last rejected name, or "".
func (s *Session) NameError() string {
	return s.nameError
}

func (s *Session) Draft() domain.Draft {
	return s.draft
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Session) Lines() []domain.LineItem {
	return s.cart.Lines()
}

// Total is the sum of every line total in the cart.
func (s *Session) Total() int {
	return s.cart.Total()
}

// Snapshot copies the session into its exported form.
func (s *Session) Snapshot() *domain.SessionSnapshot {
	return &domain.SessionSnapshot{
		Step:         s.step,
		CustomerName: s.customerName,
		NameError:    s.nameError,
		Draft:        s.draft.Snapshot(),
		Cart:         s.cart.Lines(),
		Total:        s.cart.Total(),
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	cp := *s
	cp.cart = s.cart.Clone()
	return &cp
}

// RestoreSession rebuilds a session from its snapshot, as read back from a
// durable store. Engine.Check still has to accept it against the catalog.
func RestoreSession(snap *domain.SessionSnapshot) (*Session, error) {
	if snap == nil {
		return nil, &domain.InvariantError{Detail: "nil snapshot"}
	}
	if !snap.Step.Valid() {
		return nil, &domain.InvariantError{Step: snap.Step, Detail: "unknown step"}
	}
	cart, err := domain.RestoreCart(snap.Cart)
	if err != nil {
		return nil, err
	}
	if cart.Total() != snap.Total {
		return nil, &domain.InvariantError{Step: snap.Step, Detail: fmt.Sprintf("cart total %d, want %d", snap.Total, cart.Total())}
	}
	return &Session{
		step:         snap.Step,
		customerName: snap.CustomerName,
		nameError:    snap.NameError,
		draft:        snap.Draft.Restore(),
		cart:         cart,
	}, nil
}
