package app

import "github.com/shopspring/decimal"

// CreateUserRequest carries a new user together with its plaintext password.
// The password is hashed in the core layer and never stored.
type CreateUserRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
	Role            string  `json:"role" validate:"required"`
	CompanyID       *string `json:"company_id"`
	HasAllCompanies bool    `json:"has_all_companies_access"`
	IsActive        bool    `json:"is_active"`
}

// UpdateRawDataRequest changes the stored magnitude of one raw data point.
// Only the amount is mutable; references and period are fixed at insert.
type UpdateRawDataRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
