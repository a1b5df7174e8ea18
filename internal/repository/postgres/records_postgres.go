package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"creditdoc/internal/model"
	"creditdoc/internal/repository"
)

// RecordsPostgres reads the customer, collateral and credit assessment tables.
type RecordsPostgres struct {
	db *sql.DB
}

func NewRecordsPostgres(db *sql.DB) *RecordsPostgres {
	return &RecordsPostgres{db: db}
}

var (
	_ repository.CustomerReader         = (*RecordsPostgres)(nil)
	_ repository.CollateralReader       = (*RecordsPostgres)(nil)
	_ repository.CreditAssessmentReader = (*RecordsPostgres)(nil)
)

func (r *RecordsPostgres) FindCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	const q = `
		SELECT id, full_name, id_number, phone, email, address
		FROM customers
		WHERE id = $1
	`
	var c model.Customer
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.FullName, &c.IDNumber, &c.Phone, &c.Email, &c.Address)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &c, nil
}

func (r *RecordsPostgres) FindCollateral(ctx context.Context, id int64) (*model.Collateral, error) {
	const q = `
		SELECT id, collateral_type, value, description
		FROM collaterals
		WHERE id = $1
	`
	var c model.Collateral
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.CollateralType, &c.Value, &c.Description)
	if err != nil {
		return nil, notFound(err, "collateral", id)
	}
	return &c, nil
}

// FindCreditAssessment scans nullable loan terms and decodes the loan_info JSONB column.
func (r *RecordsPostgres) FindCreditAssessment(ctx context.Context, id int64) (*model.CreditAssessment, error) {
	const q = `
		SELECT id, approved_amount, interest_rate, loan_term, loan_info
		FROM credit_assessments
		WHERE id = $1
	`
	var (
		a        model.CreditAssessment
		amount   decimal.NullDecimal
		rate     sql.NullFloat64
		term     sql.NullInt64
		loanInfo []byte
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &amount, &rate, &term, &loanInfo)
	if err != nil {
		return nil, notFound(err, "credit assessment", id)
	}

	if amount.Valid {
		a.ApprovedAmount = &amount.Decimal
	}
	if rate.Valid {
		a.InterestRate = &rate.Float64
	}
	if term.Valid {
		t := int(term.Int64)
		a.LoanTerm = &t
	}
	if len(loanInfo) > 0 {
		if err := json.Unmarshal(loanInfo, &a.LoanInfo); err != nil {
			return nil, fmt.Errorf("decode loan_info of credit assessment %d: %w", id, err)
		}
	}
	return &a, nil
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, repository.ErrNotFound)
	}
	return err
}
