package domain

// Transition is one edge of the ordering flow. Guard names the condition
// that must hold for the edge to be taken, if any.
type Transition struct {
	From   Step
	Action ActionType
	To     Step
	Guard  string
}

// Flow lists every transition the engine performs, grouped by source step
// in flow order.
var Flow = []Transition{
	{From: StepWelcome, Action: ActionBegin, To: StepNameEntry},
	{From: StepNameEntry, Action: ActionSubmitName, To: StepMenu, Guard: "valid name"},
	{From: StepMenu, Action: ActionChooseCategory, To: StepItemPicker, Guard: "known category"},
	{From: StepMenu, Action: ActionCheckout, To: StepCheckout, Guard: "cart not empty"},
	{From: StepItemPicker, Action: ActionSelectItem, To: StepQuantityPicker, Guard: "item in category"},
	{From: StepItemPicker, Action: ActionBack, To: StepMenu},
	{From: StepQuantityPicker, Action: ActionAddToCart, To: StepMenu, Guard: "1..100"},
	{From: StepQuantityPicker, Action: ActionChangeSelection, To: StepItemPicker},
	{From: StepQuantityPicker, Action: ActionBack, To: StepMenu},
	{From: StepCheckout, Action: ActionConfirm, To: StepThankYou, Guard: "cart not empty"},
	{From: StepCheckout, Action: ActionAddMore, To: StepMenu},
	{From: StepCheckout, Action: ActionClearCart, To: StepMenu},
	{From: StepThankYou, Action: ActionNewOrder, To: StepWelcome},
}

// Accepts lists the actions s has an outgoing transition for.
func (s Step) Accepts() []ActionType {
	var out []ActionType
	for _, t := range Flow {
		if t.From == s {
			out = append(out, t.Action)
		}
	}
	return out
}
