package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"creditdoc/internal/docx"
	"creditdoc/internal/model"
	"creditdoc/internal/schedule"
	"creditdoc/internal/spreadsheet"
)

const dateLayout = "02/01/2006"

// BuildRenderData flattens the records of one request into the closed key set templates may use.
// Every key is always present; absent records leave their keys empty.
func BuildRenderData(data model.DocumentData, now time.Time) docx.Data {
	f := map[string]string{
		"customer_name":          "",
		"full_name":              "",
		"id_number":              "",
		"phone":                  "",
		"email":                  "",
		"address":                "",
		"collateral_type":        "",
		"collateral_value":       "",
		"collateral_description": "",
		"loan_amount":            "",
		"approved_amount":        "",
		"interest_rate":          "",
		"loan_term":              "",
		"fees_total":             "",
		"monthly_payment":        "",
		"total_interest":         "",
		"total_payment":          "",
		"current_date":           now.Format(dateLayout),
		"current_day":            now.Format("02"),
		"current_month":          now.Format("01"),
		"current_year":           now.Format("2006"),
	}
	groups := map[string]map[string]string{}

	if c := data.Customer; c != nil {
		f["customer_name"] = c.FullName
		f["full_name"] = c.FullName
		f["id_number"] = c.IDNumber
		f["phone"] = c.Phone
		f["email"] = c.Email
		f["address"] = c.Address
		groups["customer"] = map[string]string{
			"id":        strconv.FormatInt(c.ID, 10),
			"full_name": c.FullName,
			"id_number": c.IDNumber,
			"phone":     c.Phone,
			"email":     c.Email,
			"address":   c.Address,
		}
	}

	if c := data.Collateral; c != nil {
		f["collateral_type"] = c.CollateralType
		f["collateral_value"] = FormatVND(c.Value)
		f["collateral_description"] = c.Description
		groups["collateral"] = map[string]string{
			"id":              strconv.FormatInt(c.ID, 10),
			"collateral_type": c.CollateralType,
			"value":           f["collateral_value"],
			"description":     c.Description,
		}
	}

	if a := data.CreditAssessment; a != nil {
		li := a.LoanInfo
		if a.ApprovedAmount != nil {
			f["approved_amount"] = FormatVND(*a.ApprovedAmount)
		}
		switch {
		case li.Amount != nil:
			f["loan_amount"] = FormatVND(*li.Amount)
		case a.ApprovedAmount != nil:
			f["loan_amount"] = f["approved_amount"]
		}
		f["interest_rate"] = firstFloat(a.InterestRate, li.Interest)
		f["loan_term"] = firstInt(a.LoanTerm, li.Term)
		f["fees_total"] = FormatVND(li.FeesTotal())

		if terms, err := spreadsheet.TermsFromAssessment(a); err == nil {
			if rows, err := schedule.ComputeAmortizationSchedule(terms, now); err == nil && len(rows) > 0 {
				totals := schedule.Summarize(rows)
				f["monthly_payment"] = FormatVND(rows[0].TotalPayment)
				f["total_interest"] = FormatVND(totals.Interest)
				f["total_payment"] = FormatVND(totals.Payment)
			}
		}

		groups["credit_assessment"] = map[string]string{
			"id":              strconv.FormatInt(a.ID, 10),
			"approved_amount": f["approved_amount"],
			"interest_rate":   formatFloat(a.InterestRate),
			"loan_term":       formatInt(a.LoanTerm),
		}
		groups["loan_info"] = map[string]string{
			"amount":     formatDecimal(li.Amount),
			"interest":   formatFloat(li.Interest),
			"term":       formatInt(li.Term),
			"fees_total": f["fees_total"],
		}
	}

	return docx.Data{Fields: f, Groups: groups}
}

// FormatVND renders an amount in whole dong with '.' as the thousands separator: 120.000.000.
func FormatVND(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return FormatVND(*d)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func firstFloat(vals ...*float64) string {
	for _, v := range vals {
		if v != nil {
			return formatFloat(v)
		}
	}
	return ""
}

func firstInt(vals ...*int) string {
	for _, v := range vals {
		if v != nil {
			return formatInt(v)
		}
	}
	return ""
}
