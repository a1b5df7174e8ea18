package model

import "github.com/shopspring/decimal"

// Customer, Collateral and CreditAssessment are owned by the CRUD layer and only read here.

type Customer struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	IDNumber string `json:"id_number"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

type Collateral struct {
	ID             int64           `json:"id"`
	CollateralType string          `json:"collateral_type"`
	Value          decimal.Decimal `json:"value"`
	Description    string          `json:"description"`
}

// CreditAssessment carries the approved loan terms. Top-level fields win over LoanInfo
// when both are set; either may be absent on a draft assessment.
type CreditAssessment struct {
	ID             int64            `json:"id"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"`
	InterestRate   *float64         `json:"interest_rate,omitempty"`
	LoanTerm       *int             `json:"loan_term,omitempty"`
	LoanInfo       LoanInfo         `json:"loan_info"`
}

type LoanInfo struct {
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Interest *float64         `json:"interest,omitempty"`
	Term     *int             `json:"term,omitempty"`
	Fees     []Fee            `json:"fees,omitempty"`
}

type Fee struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// FeesTotal sums every fee listed in the loan info.
func (l LoanInfo) FeesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, f := range l.Fees {
		total = total.Add(f.Amount)
	}
	return total
}
