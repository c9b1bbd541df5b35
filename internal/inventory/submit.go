package inventory

import (
	"context"
	"errors"
)

// ProductsRoute is where a successful submission navigates to.
const ProductsRoute = "/products"

// DraftForm holds the add-product form state.
type DraftForm struct {
	Draft Draft
}

// Submit validates the draft and creates it through gw. Validation failures
// never reach the gateway. On gateway failure the draft is left as typed.
func (f *DraftForm) Submit(ctx context.Context, gw Gateway, notifier Notifier, navigator Navigator) (Product, error) {
	notifier = notifierOrDiscard(notifier)
	if err := ValidateDraft(f.Draft); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			notifier.Notify(LevelError, verr.Message)
		}
		return Product{}, err
	}
	created, err := gw.Create(ctx, f.Draft)
	if err != nil {
		notifier.Notify(LevelError, GatewayMessage(err, MsgAddProductFailed))
		return Product{}, err
	}
	notifier.Notify(LevelSuccess, MsgProductAdded)
	if navigator != nil {
		navigator.Navigate(ProductsRoute)
	}
	return created, nil
}
