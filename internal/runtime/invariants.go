package runtime

import "github.com/aretw0/barista/pkg/domain"

// checkSession verifies the draft and cart are consistent with the step.
// A failure means the session was built or mutated outside the engine.
func (e *Engine) checkSession(s *Session) error {
	fail := func(detail string) error {
		return &domain.InvariantError{Step: s.step, Detail: detail}
	}

	if !s.step.Valid() {
		return fail("unknown step")
	}

	_, named := s.CustomerName()
	category, hasCategory := s.draft.Category()

	switch s.step {
	case domain.StepWelcome, domain.StepNameEntry:
		if !s.draft.Empty() {
			return fail("selection must be empty")
		}
		if !s.cart.IsEmpty() {
			return fail("cart must be empty before the customer is named")
		}
	case domain.StepMenu, domain.StepCheckout, domain.StepThankYou:
		if !named {
			return fail("customer name missing")
		}
		if !s.draft.Empty() {
			return fail("selection must be empty")
		}
	case domain.StepItemPicker:
		if !named {
			return fail("customer name missing")
		}
		if !hasCategory || !e.catalog.HasCategory(category) {
			return fail("item picker requires a known category")
		}
	case domain.StepQuantityPicker:
		if !named {
			return fail("customer name missing")
		}
		if !s.draft.Complete() {
			return fail("quantity picker requires category, item and price")
		}
		item, _ := s.draft.Item()
		if _, ok := e.catalog.Price(category, item); !ok {
			return fail("selected item is not on the menu")
		}
	}
	return nil
}

// Check reports whether s is a session the engine can drive.
func (e *Engine) Check(s *Session) error {
	if s == nil {
		return &domain.InvariantError{Detail: "nil session"}
	}
	return e.checkSession(s)
}
