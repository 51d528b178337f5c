package payment

import (
	"context"
	"fmt"
)

// Gateway is the boundary to the external payment rail. Implementations
// must honor ctx cancellation; a timed-out charge is reported as an Error.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, reference string) error
}

type ChargeRequest struct {
	OrderID     string
	AmountCents int64
	Currency    string
	Description string
}

type ChargeResult struct {
	Reference string
}

// Error carries the gateway's decline or failure reason. It is terminal for
// the tip attempt: the caller must submit a new tip, not retry this one.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

func NewError(reason string) *Error {
	return &Error{Reason: reason}
}
