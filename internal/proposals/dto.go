package proposals

import "time"

type ProposalItemInput struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	ItemOrder   int     `json:"item_order" validate:"gte=0"`
}

type CreateProposalRequest struct {
	ClientID   string              `json:"client_id" validate:"required,uuid4"`
	Title      string              `json:"title" validate:"required,max=300"`
	Scope      *string             `json:"scope,omitempty"`
	ValidUntil *time.Time          `json:"valid_until,omitempty"`
	Notes      *string             `json:"notes,omitempty"`
	Items      []ProposalItemInput `json:"items" validate:"required,min=1,dive"`
}

type UpdateProposalRequest struct {
	Title      *string              `json:"title,omitempty" validate:"omitempty,max=300"`
	Scope      *string              `json:"scope,omitempty"`
	ValidUntil *time.Time           `json:"valid_until,omitempty"`
	Notes      *string              `json:"notes,omitempty"`
	Items      *[]ProposalItemInput `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

type ListProposalsRequest struct {
	ClientID *string `json:"client_id,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
