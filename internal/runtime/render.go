package runtime

import (
	"fmt"

	"github.com/aretw0/barista/pkg/domain"
)

// Render builds the view of the session's current step. The view offers
// exactly the actions the step accepts and always carries the cart summary.
func (e *Engine) Render(s *Session) domain.View {
	v := domain.View{
		Step:     s.step,
		Options:  []domain.Option{},
		Currency: e.currency,
		Cart: domain.CartView{
			Lines: s.cart.Lines(),
			Total: s.cart.Total(),
		},
	}

	switch s.step {
	case domain.StepWelcome:
		v.Title = "Welcome to Wime Cafe!"
		v.Body = []string{"Please enter your name to start."}
		v.Options = append(v.Options, option("Start Ordering", domain.Begin{}, true))

	case domain.StepNameEntry:
		v.Title = "Welcome to Wime Cafe!"
		v.Body = []string{"Please enter your name to start."}
		v.Input = &domain.InputRequest{
			Kind:   domain.InputText,
			Label:  "Your Name",
			Action: domain.ActionSubmitName,
		}
		v.Error = s.nameError

	case domain.StepMenu:
		v.Title = fmt.Sprintf("Hello, %s!", s.customerName)
		for _, name := range e.catalog.CategoryNames() {
			v.Options = append(v.Options, option("Order "+name, domain.ChooseCategory{Category: name}, false))
		}
		if !s.cart.IsEmpty() {
			v.Options = append(v.Options, option("Proceed to Checkout", domain.Checkout{}, true))
		}

	case domain.StepItemPicker:
		category, _ := s.draft.Category()
		v.Title = fmt.Sprintf("What %s would you like?", category)
		v.Body = []string{"Choose an item:"}
		items, _ := e.catalog.Items(category)
		for _, it := range items {
			label := fmt.Sprintf("%s (%s)", it.Name, v.Price(it.Price))
			v.Options = append(v.Options, option(label, domain.SelectItem{Item: it.Name}, false))
		}
		v.Options = append(v.Options, option("Back to Main Menu", domain.Back{}, false))

	case domain.StepQuantityPicker:
		item, _ := s.draft.Item()
		v.Title = fmt.Sprintf("You selected %s. How many would you like?", item)
		v.Body = []string{fmt.Sprintf("Unit price: %s", v.Price(s.draft.Price()))}
		v.Input = &domain.InputRequest{
			Kind:    domain.InputNumber,
			Label:   "Quantity",
			Action:  domain.ActionAddToCart,
			Min:     domain.MinQuantity,
			Max:     domain.MaxQuantity,
			Default: domain.MinQuantity,
		}
		v.Options = append(v.Options,
			option("Change Selection", domain.ChangeSelection{}, false),
			option("Back to Main Menu", domain.Back{}, false),
		)

	case domain.StepCheckout:
		v.Title = "Order Summary"
		if s.cart.IsEmpty() {
			v.Error = msgEmptyCart
			v.Options = append(v.Options, option("Return to Ordering", domain.AddMore{}, false))
			break
		}
		v.Summary = true
		v.Options = append(v.Options,
			option("Confirm Order", domain.Confirm{}, true),
			option("Add More Items", domain.AddMore{}, false),
			option("Clear Cart", domain.ClearCart{}, false),
		)

	case domain.StepThankYou:
		v.Title = fmt.Sprintf("Thank You, %s!", s.customerName)
		v.Body = []string{"Your order will be ready in a minute."}
		v.Options = append(v.Options, option("Start a New Order", domain.NewOrder{}, true))
	}

	return v
}

func option(label string, a domain.Action, primary bool) domain.Option {
	return domain.Option{Label: label, Action: domain.Envelope(a), Primary: primary}
}
