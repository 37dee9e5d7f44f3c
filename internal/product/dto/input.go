package dto

type CreateProductInput struct {
	Name         string
	Slug         string // generated from Name when empty
	Description  string
	Price        float64
	CostPrice    float64
	CategoryID   string
	InitialStock int
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	CostPrice   *float64
	CategoryID  *string
	IsActive    *bool
}

type ProductFilters struct {
	CategoryID string
	ActiveOnly bool
	InStock    bool
}
