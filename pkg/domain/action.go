package domain

import (
	"errors"
	"fmt"
)

// ActionType is the discriminator of the Action union.
type ActionType string

const (
	ActionBegin           ActionType = "begin"
	ActionSubmitName      ActionType = "submit_name"
	ActionChooseCategory  ActionType = "choose_category"
	ActionCheckout        ActionType = "checkout"
	ActionSelectItem      ActionType = "select_item"
	ActionBack            ActionType = "back"
	ActionAddToCart       ActionType = "add_to_cart"
	ActionChangeSelection ActionType = "change_selection"
	ActionConfirm         ActionType = "confirm"
	ActionAddMore         ActionType = "add_more"
	ActionClearCart       ActionType = "clear_cart"
	ActionNewOrder        ActionType = "new_order"
)

// ErrUnknownAction is returned when an envelope carries an unknown type.
var ErrUnknownAction = errors.New("unknown action type")

// Action is a user action consumed by the Flow Controller.
// The concrete types below are the only implementations.
type Action interface {
	Type() ActionType
	isAction()
}

// Begin leaves the welcome screen.
type Begin struct{}

// SubmitName submits the raw name typed by the customer.
type SubmitName struct{ Name string }

// ChooseCategory opens a menu category.
type ChooseCategory struct{ Category string }

// Checkout proceeds from the menu to the order summary.
type Checkout struct{}

// SelectItem picks an item of the open category.
type SelectItem struct{ Item string }

// Back abandons the current selection and returns to the menu.
type Back struct{}

// AddToCart commits the draft with the given quantity.
type AddToCart struct{ Quantity int }

// ChangeSelection returns from the quantity picker to the item list.
type ChangeSelection struct{}

// Confirm submits the order.
type Confirm struct{}

// AddMore returns from checkout to the menu.
type AddMore struct{}

// ClearCart empties the cart from checkout.
type ClearCart struct{}

// NewOrder starts over after the thank-you screen.
type NewOrder struct{}

func (Begin) Type() ActionType           { return ActionBegin }
func (SubmitName) Type() ActionType      { return ActionSubmitName }
func (ChooseCategory) Type() ActionType  { return ActionChooseCategory }
func (Checkout) Type() ActionType        { return ActionCheckout }
func (SelectItem) Type() ActionType      { return ActionSelectItem }
func (Back) Type() ActionType            { return ActionBack }
func (AddToCart) Type() ActionType       { return ActionAddToCart }
func (ChangeSelection) Type() ActionType { return ActionChangeSelection }
func (Confirm) Type() ActionType         { return ActionConfirm }
func (AddMore) Type() ActionType         { return ActionAddMore }
func (ClearCart) Type() ActionType       { return ActionClearCart }
func (NewOrder) Type() ActionType        { return ActionNewOrder }

func (Begin) isAction()           {}
func (SubmitName) isAction()      {}
func (ChooseCategory) isAction()  {}
func (Checkout) isAction()        {}
func (SelectItem) isAction()      {}
func (Back) isAction()            {}
func (AddToCart) isAction()       {}
func (ChangeSelection) isAction() {}
func (Confirm) isAction()         {}
func (AddMore) isAction()         {}
func (ClearCart) isAction()       {}
func (NewOrder) isAction()        {}

// ActionEnvelope is the flat wire form of an Action used by JSON and MCP hosts.
type ActionEnvelope struct {
	Type     ActionType `json:"type" mapstructure:"type"`
	Name     string     `json:"name,omitempty" mapstructure:"name"`
	Category string     `json:"category,omitempty" mapstructure:"category"`
	Item     string     `json:"item,omitempty" mapstructure:"item"`
	Quantity int        `json:"quantity,omitempty" mapstructure:"quantity"`
}

// Action converts the envelope into its concrete Action.
func (e ActionEnvelope) Action() (Action, error) {
	switch e.Type {
	case ActionBegin:
		return Begin{}, nil
	case ActionSubmitName:
		return SubmitName{Name: e.Name}, nil
	case ActionChooseCategory:
		return ChooseCategory{Category: e.Category}, nil
	case ActionCheckout:
		return Checkout{}, nil
	case ActionSelectItem:
		return SelectItem{Item: e.Item}, nil
	case ActionBack:
		return Back{}, nil
	case ActionAddToCart:
		return AddToCart{Quantity: e.Quantity}, nil
	case ActionChangeSelection:
		return ChangeSelection{}, nil
	case ActionConfirm:
		return Confirm{}, nil
	case ActionAddMore:
		return AddMore{}, nil
	case ActionClearCart:
		return ClearCart{}, nil
	case ActionNewOrder:
		return NewOrder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, e.Type)
	}
}

// Envelope flattens an Action into its wire form.
func Envelope(a Action) ActionEnvelope {
	env := ActionEnvelope{Type: a.Type()}
	switch v := a.(type) {
	case SubmitName:
		env.Name = v.Name
	case ChooseCategory:
		env.Category = v.Category
	case SelectItem:
		env.Item = v.Item
	case AddToCart:
		env.Quantity = v.Quantity
	}
	return env
}
