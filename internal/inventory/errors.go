package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized indicates the API rejected the session token.
	ErrUnauthorized = errors.New("inventory: unauthorized")
	// ErrNotFound indicates the product does not exist.
	ErrNotFound = errors.New("inventory: product not found")
	// ErrConflict indicates a duplicate SKU or similar conflict.
	ErrConflict = errors.New("inventory: conflict")
	// ErrEditClosed is returned when saving an edit session that already ended.
	ErrEditClosed = errors.New("inventory: edit session closed")
)

// User facing fallback messages per operation.
const (
	MsgLoadProductsFailed  = "Failed to load products"
	MsgUpdateQuantityFail  = "Failed to update quantity"
	MsgAddProductFailed    = "Failed to add product"
	MsgLoadDashboardFailed = "Failed to load dashboard data"

	MsgQuantityUpdated = "Quantity updated successfully"
	MsgProductAdded    = "Product added successfully!"
)

// GatewayError describes a failed call to the product API.
type GatewayError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	b.WriteString("inventory: gateway ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, " status=%d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// GatewayMessage returns the server supplied detail of err, or fallback.
func GatewayMessage(err error, fallback string) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && strings.TrimSpace(gwErr.Message) != "" {
		return gwErr.Message
	}
	return fallback
}

// ValidationCode names the draft rule that failed.
type ValidationCode string

const (
	NameRequired             ValidationCode = "NameRequired"
	TypeRequired             ValidationCode = "TypeRequired"
	SkuRequired              ValidationCode = "SkuRequired"
	PriceMustBePositive      ValidationCode = "PriceMustBePositive"
	QuantityCannotBeNegative ValidationCode = "QuantityCannotBeNegative"
)

// ValidationError is the first draft rule violation found.
type ValidationError struct {
	Code    ValidationCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
