package proposals

import "time"

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

type Proposal struct {
	ID          string         `json:"id" db:"id"`
	ClientID    string         `json:"client_id" db:"client_id"`
	PermitID    *string        `json:"permit_id,omitempty" db:"permit_id"`
	Title       string         `json:"title" db:"title"`
	Scope       *string        `json:"scope,omitempty" db:"scope"`
	Status      Status         `json:"status" db:"status"`
	ValidUntil  *time.Time     `json:"valid_until,omitempty" db:"valid_until"`
	TotalAmount float64        `json:"total_amount" db:"total_amount"`
	Notes       *string        `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	Items       []ProposalItem `json:"items,omitempty" db:"-"`
}

type ProposalItem struct {
	ID          string  `json:"id" db:"id"`
	ProposalID  string  `json:"proposal_id" db:"proposal_id"`
	Description string  `json:"description" db:"description"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
	Total       float64 `json:"total" db:"total"`
	ItemOrder   int     `json:"item_order" db:"item_order"`
}

// SumItems recomputes the proposal total from its line items.
func SumItems(items []ProposalItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.UnitPrice
	}
	return total
}
