package payment

import (
	"context"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// MidtransGateway charges tips through the Midtrans core API.
type MidtransGateway struct {
	client coreapi.Client
}

// Midtrans gross amounts are denominated in whole rupiah while the ledger
// stores cents. Round up so the charge never falls short of the recorded
// amount.
func grossAmount(cents int64) int64 {
	return (cents + 99) / 100
}

func NewMidtransGateway(serverKey string) *MidtransGateway {
	var c coreapi.Client
	c.New(serverKey, midtrans.Sandbox)

	return &MidtransGateway{client: c}
}

func (g *MidtransGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	type chargeOutcome struct {
		res *coreapi.ChargeResponse
		err *midtrans.Error
	}

	// The midtrans client has no context support; run the call in a
	// goroutine so a deadline still bounds the caller.
	done := make(chan chargeOutcome, 1)
	go func() {
		res, err := g.client.ChargeTransaction(&coreapi.ChargeReq{
			PaymentType: coreapi.PaymentTypeQris,
			TransactionDetails: midtrans.TransactionDetails{
				OrderID:  req.OrderID,
				GrossAmt: grossAmount(req.AmountCents),
			},
		})
		done <- chargeOutcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, NewError("payment gateway timed out")
	case out := <-done:
		if out.err != nil {
			return nil, NewError(out.err.Message)
		}
		switch out.res.TransactionStatus {
		case "capture", "settlement", "pending":
			return &ChargeResult{Reference: out.res.TransactionID}, nil
		default:
			return nil, NewError("charge " + out.res.TransactionStatus + ": " + out.res.StatusMessage)
		}
	}
}

func (g *MidtransGateway) Refund(ctx context.Context, reference string) error {
	type refundOutcome struct {
		err *midtrans.Error
	}

	done := make(chan refundOutcome, 1)
	go func() {
		_, err := g.client.RefundTransaction(reference, &coreapi.RefundReq{
			Reason: "tip refund",
		})
		done <- refundOutcome{err: err}
	}()

	select {
	case <-ctx.Done():
		return NewError("payment gateway timed out")
	case out := <-done:
		if out.err != nil {
			return NewError(out.err.Message)
		}
		return nil
	}
}
