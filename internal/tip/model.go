package tip

import "time"

// Tip statuses. A tip is never deleted; it only moves
// pending -> completed -> refunded, or pending -> failed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// Source tags for where the tip originated.
const (
	SourceDirect      = "direct"
	SourceCampaign    = "campaign"
	SourceBadge       = "badge"
	SourceLeaderboard = "leaderboard"
)

// Tip is one ledger row. AllocatedCents tracks how much of the amount has
// been drawn by payout requests; a tip with a non-zero allocation cannot be
// refunded.
type Tip struct {
	ID             int        `db:"id" json:"id"`
	TipperID       int        `db:"tipper_id" json:"tipper_id"`
	CreatorID      int        `db:"creator_id" json:"creator_id"`
	AmountCents    int64      `db:"amount_cents" json:"amount_cents"`
	Currency       string     `db:"currency" json:"currency"`
	Message        string     `db:"message" json:"message,omitempty"`
	Status         string     `db:"status" json:"status"`
	Source         string     `db:"source" json:"source"`
	PaymentRef     *string    `db:"payment_ref" json:"payment_ref,omitempty"`
	FailureReason  *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	RefundReason   *string    `db:"refund_reason" json:"refund_reason,omitempty"`
	IdempotencyKey *string    `db:"idempotency_key" json:"-"`
	AllocatedCents int64      `db:"allocated_cents" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	RefundedAt     *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`
}

type SubmitTipRequest struct {
	CreatorID   int    `json:"creator_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
	Message     string `json:"message" binding:"omitempty,max=280"`
	Source      string `json:"source" binding:"omitempty,oneof=direct campaign badge leaderboard"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required,max=280"`
}
