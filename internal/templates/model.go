package templates

import "time"

// Template is a reusable, named set of checklist items scoped to a permit
// type. Applying a template copies its items; permits never reference them.
type Template struct {
	ID         string         `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	PermitType string         `json:"permit_type" db:"permit_type"`
	Items      []TemplateItem `json:"items,omitempty" db:"-"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

type TemplateItem struct {
	ID         string   `json:"id" db:"id"`
	TemplateID string   `json:"template_id" db:"template_id"`
	Title      string   `json:"title" db:"title"`
	Price      *float64 `json:"price,omitempty" db:"price"`
	ItemOrder  int      `json:"item_order" db:"item_order"`
}
