package permits

import "time"

type CreatePermitRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	ClientID    string     `json:"client_id" validate:"required,uuid4"`
	PermitType  string     `json:"permit_type" validate:"required,max=100"`
	Location    string     `json:"location" validate:"max=300"`
	Description *string    `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type UpdatePermitRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=300"`
	PermitType  *string    `json:"permit_type,omitempty" validate:"omitempty,max=100"`
	Status      *Status    `json:"status,omitempty" validate:"omitempty,oneof=draft submitted in-progress approved expired"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=300"`
	Description *string    `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type ListPermitsRequest struct {
	ClientID *string `json:"client_id,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Search   *string `json:"search,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}

type CreateChecklistItemRequest struct {
	Title string   `json:"title" validate:"required,max=300"`
	Price *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Notes *string  `json:"notes,omitempty"`
}

type UpdateChecklistItemRequest struct {
	Title     *string  `json:"title,omitempty" validate:"omitempty,max=300"`
	Completed *bool    `json:"completed,omitempty"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Notes     *string  `json:"notes,omitempty"`
}
