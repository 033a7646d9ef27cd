package templates

type TemplateItemInput struct {
	Title     string   `json:"title" validate:"required,max=300"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	ItemOrder int      `json:"item_order" validate:"gte=0"`
}

type CreateTemplateRequest struct {
	Name       string              `json:"name" validate:"required,max=200"`
	PermitType string              `json:"permit_type" validate:"required,max=100"`
	Items      []TemplateItemInput `json:"items" validate:"required,min=1,dive"`
}

type UpdateTemplateRequest struct {
	Name       *string              `json:"name,omitempty" validate:"omitempty,max=200"`
	PermitType *string              `json:"permit_type,omitempty" validate:"omitempty,max=100"`
	Items      *[]TemplateItemInput `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

type ListTemplatesRequest struct {
	PermitType *string `json:"permit_type,omitempty"`
	Limit      int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int     `json:"offset" validate:"gte=0"`
}
