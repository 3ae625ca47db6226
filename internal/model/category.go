package model

import "time"

// Canonical category codes. The cascade's fallback tier guarantees every
// transaction ends up with one of these (or an operator-defined code).
const (
	CategoryDining       = "dining"
	CategoryGroceries    = "groceries"
	CategoryUtilities    = "utilities"
	CategoryTransport    = "transport"
	CategoryFuel         = "fuel"
	CategoryPets         = "pets"
	CategoryShopping     = "shopping"
	CategoryEntertain    = "entertainment"
	CategoryInvestment   = "investment"
	CategoryLoan         = "loan_emi"
	CategoryInsurance    = "insurance"
	CategoryCreditCard   = "credit_card_bill"
	CategoryTransfersOut = "transfers_out"
	CategoryTransfersIn  = "transfers_in"
	CategoryOther        = "other"
)

// Category represents a valid spending category.
type Category struct {
	CreatedAt   time.Time
	Code        string
	Name        string
	Description string
	ID          int
	IsActive    bool
}
