package dto

// CustomerFilter is bound from the query string of GET /v1/customers.
type CustomerFilter struct {
	Search string `form:"search"` // matches name or phone prefix
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateCustomerRequest struct {
	Name    string  `json:"name"  validate:"required,min=2"`
	Phone   string  `json:"phone" validate:"required,min=6"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Address *string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name    string  `json:"name"  validate:"required,min=2"`
	Phone   string  `json:"phone" validate:"required,min=6"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Address *string `json:"address"`
}

type CustomerResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
