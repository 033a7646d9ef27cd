package clients

type CreateClientRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	ContactName  *string `json:"contact_name,omitempty" validate:"omitempty,max=200"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	AddressLine1 *string `json:"address_line1,omitempty" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Notes        *string `json:"notes,omitempty"`
}

type UpdateClientRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=200"`
	ContactName  *string `json:"contact_name,omitempty" validate:"omitempty,max=200"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	AddressLine1 *string `json:"address_line1,omitempty"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type ListClientsRequest struct {
	Search *string `json:"search,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}

type CreateBranchRequest struct {
	ClientID       string  `json:"client_id" validate:"required,uuid4"`
	Label          *string `json:"label,omitempty" validate:"omitempty,max=100"`
	AddressLine1   string  `json:"address_line1" validate:"required,max=200"`
	AddressLine2   *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City           *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State          *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode     *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	IsMainLocation bool    `json:"is_main_location"`
}

type UpdateBranchRequest struct {
	Label          *string `json:"label,omitempty" validate:"omitempty,max=100"`
	AddressLine1   *string `json:"address_line1,omitempty" validate:"omitempty,max=200"`
	AddressLine2   *string `json:"address_line2,omitempty"`
	City           *string `json:"city,omitempty"`
	State          *string `json:"state,omitempty"`
	PostalCode     *string `json:"postal_code,omitempty"`
	IsMainLocation *bool   `json:"is_main_location,omitempty"`
}
