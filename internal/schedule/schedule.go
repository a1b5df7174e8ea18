// Package schedule computes loan repayment schedules.
//
// All functions are pure: the same terms and start date always produce the same rows.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// StatusPending is the status of every row of a freshly generated flat ledger.
const StatusPending = "Pending"

// MaxTermMonths bounds the schedule length (50 years).
const MaxTermMonths = 600

// balancePrecision is the number of decimal places kept on the payment and the running balance.
const balancePrecision = 16

// factorPrecision is the number of decimal places kept on the compound growth factor.
const factorPrecision = 24

var ErrInvalidLoanTerms = errors.New("invalid loan terms")

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// LoanTerms holds the inputs of an amortization schedule.
type LoanTerms struct {
	Principal         decimal.Decimal
	AnnualRatePercent float64
	TermMonths        int
}

// Validate reports configuration errors in t. A zero rate is valid.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidLoanTerms, t.Principal)
	}
	if t.TermMonths <= 0 {
		return fmt.Errorf("%w: term must be a positive number of months, got %d", ErrInvalidLoanTerms, t.TermMonths)
	}
	if t.TermMonths > MaxTermMonths {
		return fmt.Errorf("%w: term must be at most %d months, got %d", ErrInvalidLoanTerms, MaxTermMonths, t.TermMonths)
	}
	if math.IsNaN(t.AnnualRatePercent) || math.IsInf(t.AnnualRatePercent, 0) || t.AnnualRatePercent < 0 {
		return fmt.Errorf("%w: annual rate must be a finite non-negative number, got %v", ErrInvalidLoanTerms, t.AnnualRatePercent)
	}
	return nil
}

// ScheduleRow is one period of a schedule. Amortized schedules fill the balance, portion,
// interest and payment columns; flat ledgers fill Amount and Status.
type ScheduleRow struct {
	Period           int             `json:"period" yaml:"period"`
	DueDate          time.Time       `json:"due_date" yaml:"due_date"`
	PrincipalBalance decimal.Decimal `json:"principal_balance" yaml:"principal_balance,omitempty"`
	PrincipalPortion decimal.Decimal `json:"principal_portion" yaml:"principal_portion,omitempty"`
	InterestDue      decimal.Decimal `json:"interest_due" yaml:"interest_due,omitempty"`
	TotalPayment     decimal.Decimal `json:"total_payment" yaml:"total_payment,omitempty"`
	Amount           decimal.Decimal `json:"amount" yaml:"amount,omitempty"`
	Status           string          `json:"status,omitempty" yaml:"status,omitempty"`
}

// ComputeAmortizationSchedule builds a declining-balance annuity schedule.
//
// Each row carries the balance before the period is amortized. Interest, payment and principal
// portion are rounded to whole currency units for display; the running balance is kept at
// sixteen decimal places. The last period repays whatever balance remains, so the schedule
// always closes at zero.
func ComputeAmortizationSchedule(terms LoanTerms, start time.Time) ([]ScheduleRow, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	n := terms.TermMonths
	monthlyRate := decimal.NewFromFloat(terms.AnnualRatePercent).Div(twelve).Div(hundred)
	payment := annuityPayment(terms.Principal, monthlyRate, n)

	rows := make([]ScheduleRow, 0, n)
	balance := terms.Principal
	for period := 1; period <= n; period++ {
		interest := balance.Mul(monthlyRate).Round(balancePrecision)
		principalPortion := payment.Sub(interest)
		total := payment
		if period == n {
			principalPortion = balance
			total = balance.Add(interest)
		}

		rows = append(rows, ScheduleRow{
			Period:           period,
			DueDate:          AddMonths(start, period),
			PrincipalBalance: balance.Round(0),
			PrincipalPortion: principalPortion.Round(0),
			InterestDue:      interest.Round(0),
			TotalPayment:     total.Round(0),
		})
		balance = balance.Sub(principalPortion).Round(balancePrecision)
	}
	return rows, nil
}

// annuityPayment returns P*r*g / (g - 1) with g = (1+r)^n, or P/n when r is zero.
func annuityPayment(principal, monthlyRate decimal.Decimal, n int) decimal.Decimal {
	if monthlyRate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n)))
	}
	g := growth(monthlyRate, n)
	return principal.Mul(monthlyRate).Mul(g).DivRound(g.Sub(one), balancePrecision)
}

// growth returns (1+r)^n by repeated squaring, rounded at every step.
func growth(r decimal.Decimal, n int) decimal.Decimal {
	result, base := one, one.Add(r)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(factorPrecision)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base).Round(factorPrecision)
		}
	}
	return result
}

// ComputeFlatRepaymentSchedule builds an equal-principal due-date ledger with no interest.
// Instalments are whole currency units; the last one absorbs the rounding remainder so the
// ledger always sums to the principal.
func ComputeFlatRepaymentSchedule(principal decimal.Decimal, termMonths int, start time.Time) ([]ScheduleRow, error) {
	if err := (LoanTerms{Principal: principal, TermMonths: termMonths}).Validate(); err != nil {
		return nil, err
	}

	instalment := principal.Div(decimal.NewFromInt(int64(termMonths))).Round(0)
	rows := make([]ScheduleRow, 0, termMonths)
	remaining := principal
	for period := 1; period <= termMonths; period++ {
		amount := instalment
		if period == termMonths {
			amount = remaining
		}
		rows = append(rows, ScheduleRow{
			Period:  period,
			DueDate: AddMonths(start, period),
			Amount:  amount,
			Status:  StatusPending,
		})
		remaining = remaining.Sub(amount)
	}
	return rows, nil
}

// AddMonths moves t forward by n calendar months, clamping to the last day of the target
// month (31 Jan + 1 month is 28 or 29 Feb, not early March).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// Totals aggregates a schedule.
type Totals struct {
	Principal decimal.Decimal `json:"principal" yaml:"principal"`
	Interest  decimal.Decimal `json:"interest" yaml:"interest"`
	Payment   decimal.Decimal `json:"payment" yaml:"payment"`
}

// Summarize totals the rounded columns of rows. Flat ledgers contribute their amounts as principal.
func Summarize(rows []ScheduleRow) Totals {
	t := Totals{Principal: decimal.Zero, Interest: decimal.Zero, Payment: decimal.Zero}
	for _, r := range rows {
		if r.Status != "" {
			t.Principal = t.Principal.Add(r.Amount)
			t.Payment = t.Payment.Add(r.Amount)
			continue
		}
		t.Principal = t.Principal.Add(r.PrincipalPortion)
		t.Interest = t.Interest.Add(r.InterestDue)
		t.Payment = t.Payment.Add(r.TotalPayment)
	}
	return t
}
