package domain

import (
	"fmt"
	"strings"
)

// DefaultCurrency is the symbol prefixed to prices.
const DefaultCurrency = "¥"

// InputKind is the kind of free input a step collects.
type InputKind string

const (
	InputText   InputKind = "text"
	InputNumber InputKind = "number"
)

// InputRequest describes the free input of a step, paired with the action
// that carries it.
type InputRequest struct {
	Kind    InputKind  `json:"kind"`
	Label   string     `json:"label"`
	Action  ActionType `json:"action"`
	Min     int        `json:"min,omitempty"`
	Max     int        `json:"max,omitempty"`
	Default int        `json:"default,omitempty"`
}

// Option is a button offered by the current step.
type Option struct {
	Label   string         `json:"label"`
	Action  ActionEnvelope `json:"action"`
	Primary bool           `json:"primary,omitempty"`
}

// CartView summarises the cart for display.
type CartView struct {
	Lines []LineItem `json:"lines"`
	Total int        `json:"total"`
}

// View is what a host presents for the current step. It lists exactly the
// actions the step accepts.
type View struct {
	Step     Step          `json:"step"`
	Title    string        `json:"title"`
	Body     []string      `json:"body,omitempty"`
	Error    string        `json:"error,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Input    *InputRequest `json:"input,omitempty"`
	Options  []Option      `json:"options"`
	Summary  bool          `json:"summary,omitempty"`
	Cart     CartView      `json:"cart"`
	Currency string        `json:"currency"`
}

// Price formats an amount with the view currency.
func (v View) Price(amount int) string {
	cur := v.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	return fmt.Sprintf("%s%d", cur, amount)
}

// Accepts reports whether the view offers an action of type t.
func (v View) Accepts(t ActionType) bool {
	if v.Input != nil && v.Input.Action == t {
		return true
	}
	for _, opt := range v.Options {
		if opt.Action.Type == t {
			return true
		}
	}
	return false
}

// Markdown renders the view for text hosts. Options are not included;
// hosts number them in their own way.
func (v View) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", v.Title)
	for _, line := range v.Body {
		fmt.Fprintf(&b, "%s\n\n", line)
	}

	if v.Summary && len(v.Cart.Lines) > 0 {
		b.WriteString("| Item | Price | Quantity | Total |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		for _, li := range v.Cart.Lines {
			fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", li.Item, v.Price(li.UnitPrice), li.Quantity, v.Price(li.Total))
		}
		fmt.Fprintf(&b, "\n**Grand Total:** %s\n\n", v.Price(v.Cart.Total))
	}

	if v.Error != "" {
		fmt.Fprintf(&b, "> **Error:** %s\n\n", v.Error)
	}
	for _, w := range v.Warnings {
		fmt.Fprintf(&b, "> **Warning:** %s\n\n", w)
	}

	return strings.TrimSpace(b.String())
}

// CartMarkdown renders the "Current Order" sidebar.
func (v View) CartMarkdown() string {
	if len(v.Cart.Lines) == 0 {
		return "_Your cart is empty._"
	}
	var b strings.Builder
	b.WriteString("**Current Order**\n\n")
	for _, li := range v.Cart.Lines {
		fmt.Fprintf(&b, "- %d x %s: %s\n", li.Quantity, li.Item, v.Price(li.Total))
	}
	fmt.Fprintf(&b, "\n**Order Total:** %s", v.Price(v.Cart.Total))
	return b.String()
}

// Outcome is the result of a successful dispatch: the new step, a fresh
// view of it, and any non-fatal warnings raised on the way.
type Outcome struct {
	From      Step     `json:"from"`
	To        Step     `json:"to"`
	View      View     `json:"view"`
	Warnings  []string `json:"warnings,omitempty"`
	Records   int      `json:"records,omitempty"`
	Persisted int      `json:"persisted,omitempty"`
}
