package clients

import "time"

type Client struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	ContactName  *string   `json:"contact_name,omitempty" db:"contact_name"`
	Email        string    `json:"email" db:"email"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	AddressLine1 *string   `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2 *string   `json:"address_line2,omitempty" db:"address_line2"`
	City         *string   `json:"city,omitempty" db:"city"`
	State        *string   `json:"state,omitempty" db:"state"`
	PostalCode   *string   `json:"postal_code,omitempty" db:"postal_code"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Branch is a physical location belonging to a client. At most one branch per
// client carries the main-location flag.
type Branch struct {
	ID             string    `json:"id" db:"id"`
	ClientID       string    `json:"client_id" db:"client_id"`
	Label          *string   `json:"label,omitempty" db:"label"`
	AddressLine1   string    `json:"address_line1" db:"address_line1"`
	AddressLine2   *string   `json:"address_line2,omitempty" db:"address_line2"`
	City           *string   `json:"city,omitempty" db:"city"`
	State          *string   `json:"state,omitempty" db:"state"`
	PostalCode     *string   `json:"postal_code,omitempty" db:"postal_code"`
	IsMainLocation bool      `json:"is_main_location" db:"is_main_location"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
