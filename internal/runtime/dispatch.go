package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/barista/pkg/domain"
)

// effects collects what a transition did besides moving the step.
type effects struct {
	warnings  []string
	records   int
	persisted int
}

// Dispatch applies one action to the session.
//
// On success the session has moved to Outcome.To and Outcome.View describes
// it. On error the session is unchanged, except that a rejected name at
// NameEntry is remembered in NameError. Validation errors are
// *domain.ValidationError, actions the step does not offer are
// *domain.IllegalActionError and broken sessions are *domain.InvariantError.
func (e *Engine) Dispatch(ctx context.Context, s *Session, a domain.Action) (*domain.Outcome, error) {
	if s == nil {
		return nil, &domain.InvariantError{Detail: "nil session"}
	}
	if a == nil {
		return nil, fmt.Errorf("%w: nil action", domain.ErrUnknownAction)
	}
	if err := e.checkSession(s); err != nil {
		e.logger.Error("session invariant broken", "step", s.step, "action", a.Type(), "err", err)
		return nil, err
	}

	from := s.step
	e.logger.Debug("dispatch", "step", from, "action", a.Type())

	next := *s
	fx, err := e.transition(ctx, &next, a)
	if err != nil {
		var verr *domain.ValidationError
		if from == domain.StepNameEntry && errors.As(err, &verr) {
			s.nameError = verr.Message
		}
		e.logger.Debug("action rejected", "step", from, "action", a.Type(), "err", err)
		return nil, err
	}
	if err := e.checkSession(&next); err != nil {
		e.logger.Error("transition broke session invariant", "step", from, "action", a.Type(), "err", err)
		return nil, err
	}

	*s = next
	e.emitStepLeave(ctx, from, a.Type())
	e.emitStepEnter(ctx, s.step, a.Type())

	view := e.Render(s)
	view.Warnings = fx.warnings

	return &domain.Outcome{
		From:      from,
		To:        s.step,
		View:      view,
		Warnings:  fx.warnings,
		Records:   fx.records,
		Persisted: fx.persisted,
	}, nil
}

// transition mutates s according to the flow table.
func (e *Engine) transition(ctx context.Context, s *Session, a domain.Action) (effects, error) {
	var fx effects

	switch s.step {
	case domain.StepWelcome:
		if _, ok := a.(domain.Begin); ok {
			s.step = domain.StepNameEntry
			return fx, nil
		}

	case domain.StepNameEntry:
		if act, ok := a.(domain.SubmitName); ok {
			name, err := ValidateName(act.Name)
			if err != nil {
				return fx, err
			}
			s.customerName = name
			s.nameError = ""
			s.step = domain.StepMenu
			return fx, nil
		}

	case domain.StepMenu:
		switch act := a.(type) {
		case domain.ChooseCategory:
			if err := s.draft.SetCategory(e.catalog, act.Category); err != nil {
				return fx, err
			}
			s.step = domain.StepItemPicker
			return fx, nil
		case domain.Checkout:
			if s.cart.IsEmpty() {
				return fx, domain.NewValidationError("cart", msgEmptyCart, domain.ErrEmptyCart)
			}
			s.step = domain.StepCheckout
			return fx, nil
		}

	case domain.StepItemPicker:
		switch act := a.(type) {
		case domain.SelectItem:
			if err := s.draft.SetItem(e.catalog, act.Item); err != nil {
				return fx, err
			}
			s.step = domain.StepQuantityPicker
			return fx, nil
		case domain.Back:
			s.draft.Clear()
			s.step = domain.StepMenu
			return fx, nil
		}

	case domain.StepQuantityPicker:
		switch act := a.(type) {
		case domain.AddToCart:
			item, _ := s.draft.Item()
			line, err := domain.NewLineItem(item, s.draft.Price(), act.Quantity)
			if err != nil {
				return fx, err
			}
			s.cart.Append(line)
			s.draft.Clear()
			s.step = domain.StepMenu
			return fx, nil
		case domain.ChangeSelection:
			s.draft.DropItem()
			s.step = domain.StepItemPicker
			return fx, nil
		case domain.Back:
			s.draft.Clear()
			s.step = domain.StepMenu
			return fx, nil
		}

	case domain.StepCheckout:
		switch a.(type) {
		case domain.Confirm:
			return e.confirm(ctx, s)
		case domain.AddMore:
			s.step = domain.StepMenu
			return fx, nil
		case domain.ClearCart:
			s.cart.Clear()
			s.step = domain.StepMenu
			return fx, nil
		}

	case domain.StepThankYou:
		if _, ok := a.(domain.NewOrder); ok {
			s.Reset()
			return fx, nil
		}
	}

	return fx, &domain.IllegalActionError{Step: s.step, Action: string(a.Type())}
}
