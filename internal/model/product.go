package model

type Product struct {
	BaseModel
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	CostPrice   float64 `json:"costPrice,omitempty"`
	CategoryID  string  `json:"categoryId,omitempty"`
	// Stock is the coarse per-product counter mutated only through the
	// inventory ledger. Size-level quantities live in Inventory records.
	Stock    int  `json:"stock"`
	IsActive bool `json:"isActive"`
}
