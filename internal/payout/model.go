package payout

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Payout statuses. pending -> processing is implicit on admin pickup;
// processing resolves to completed or failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Request is one creator withdrawal. The amount is fully covered by the
// allocation breakdown: the allocations always sum to AmountCents.
type Request struct {
	ID            int                 `db:"id" json:"id"`
	CreatorID     int                 `db:"creator_id" json:"creator_id"`
	AmountCents   int64               `db:"amount_cents" json:"amount_cents"`
	Currency      string              `db:"currency" json:"currency"`
	Status        string              `db:"status" json:"status"`
	Snapshot      PerformanceSnapshot `db:"snapshot" json:"snapshot"`
	FailureReason *string             `db:"failure_reason" json:"failure_reason,omitempty"`
	RequestedAt   time.Time           `db:"requested_at" json:"requested_at"`
	ProcessedAt   *time.Time          `db:"processed_at" json:"processed_at,omitempty"`
	Allocations   []Allocation        `db:"-" json:"allocations,omitempty"`
}

// Allocation is one {tip, amount} line item of a payout breakdown. The
// amount never exceeds the tip's unallocated remainder at allocation time.
type Allocation struct {
	ID          int       `db:"id" json:"-"`
	PayoutID    int       `db:"payout_id" json:"-"`
	TipID       int       `db:"tip_id" json:"tip_id"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	TipDate     time.Time `db:"tip_date" json:"tip_date"`
}

// PerformanceSnapshot freezes the creator's numbers at request time; it is
// informational and never re-derived.
type PerformanceSnapshot struct {
	TipCount        int         `json:"tip_count"`
	AverageTipCents int64       `json:"average_tip_cents"`
	TopTippers      []TopTipper `json:"top_tippers"`
	EngagementScore float64     `json:"engagement_score"`
}

type TopTipper struct {
	TipperID   int    `json:"tipper_id"`
	Name       string `json:"name"`
	TotalCents int64  `json:"total_cents"`
}

// Value / Scan store the snapshot as a JSONB column.
func (s PerformanceSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *PerformanceSnapshot) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = PerformanceSnapshot{}
		return nil
	default:
		return errors.New("unsupported snapshot column type")
	}
}

// Settings is the creator's payout destination.
type Settings struct {
	CreatorID     int       `db:"creator_id" json:"creator_id"`
	Method        string    `db:"method" json:"method"`
	AccountName   string    `db:"account_name" json:"account_name"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Payout destination methods.
const (
	MethodBankTransfer = "bank_transfer"
	MethodEwallet      = "ewallet"
)

type RequestPayoutRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
}

type UpdateSettingsRequest struct {
	Method        string `json:"method" binding:"required,oneof=bank_transfer ewallet"`
	AccountName   string `json:"account_name" binding:"required,max=120"`
	AccountNumber string `json:"account_number" binding:"required,max=64"`
}

type ResolveRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=280"`
}
