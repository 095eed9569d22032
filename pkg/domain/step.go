package domain

// Step identifies one state of the ordering flow.
type Step string

const (
	StepWelcome        Step = "welcome"
	StepNameEntry      Step = "name_entry"
	StepMenu           Step = "menu"
	StepItemPicker     Step = "item_picker"
	StepQuantityPicker Step = "quantity_picker"
	StepCheckout       Step = "checkout"
	StepThankYou       Step = "thank_you"
)

// Steps lists every step in flow order.
var Steps = []Step{
	StepWelcome,
	StepNameEntry,
	StepMenu,
	StepItemPicker,
	StepQuantityPicker,
	StepCheckout,
	StepThankYou,
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	for _, known := range Steps {
		if s == known {
			return true
		}
	}
	return false
}

// RequiresCompleteDraft reports whether the draft must be fully populated
// while the flow sits in s.
func (s Step) RequiresCompleteDraft() bool {
	return s == StepQuantityPicker
}

func (s Step) String() string {
	return string(s)
}
