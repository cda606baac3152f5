package orders

import "fmt"

// Domain error taxonomy. Handlers map these to HTTP statuses; everything
// else surfaces as a generic 500. All checks run before any mutation, so a
// returned error means the transaction rolled back with no partial state.

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a missing shopper, seller, product or order.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidStateError reports an action that is not legal for the order's
// current status.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// InsufficientStockError names the product whose stock cannot cover the
// requested quantity.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
		e.ProductName, e.Available, e.Requested)
}

// ConflictError reports a duplicate resource.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }
