// Package spreadsheet synthesizes the tabular credit documents directly, without a template.
package spreadsheet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"creditdoc/internal/model"
	"creditdoc/internal/schedule"
)

// HeaderRows is the number of rows above the first schedule row: title, customer identity,
// loan parameters and column headings.
const HeaderRows = 10

const dateLayout = "02/01/2006"

var (
	ErrMissingLoanTerms = errors.New("missing loan terms")
	ErrUnsupportedKind  = errors.New("document type is not a spreadsheet")
)

var columnWidths = map[string]float64{"A": 18, "B": 16, "C": 20, "D": 20, "E": 18, "F": 20}

// TermsFromAssessment resolves the loan terms of an assessment, preferring the approved
// top-level values over the requested ones in loan_info.
func TermsFromAssessment(a *model.CreditAssessment) (schedule.LoanTerms, error) {
	return resolveTerms(a, true)
}

func resolveTerms(a *model.CreditAssessment, needRate bool) (schedule.LoanTerms, error) {
	if a == nil {
		return schedule.LoanTerms{}, fmt.Errorf("%w: a credit assessment is required", ErrMissingLoanTerms)
	}

	var (
		terms   schedule.LoanTerms
		missing []string
	)
	switch {
	case a.ApprovedAmount != nil:
		terms.Principal = *a.ApprovedAmount
	case a.LoanInfo.Amount != nil:
		terms.Principal = *a.LoanInfo.Amount
	default:
		missing = append(missing, "approved_amount")
	}
	switch {
	case a.InterestRate != nil:
		terms.AnnualRatePercent = *a.InterestRate
	case a.LoanInfo.Interest != nil:
		terms.AnnualRatePercent = *a.LoanInfo.Interest
	case needRate:
		missing = append(missing, "interest_rate")
	}
	switch {
	case a.LoanTerm != nil:
		terms.TermMonths = *a.LoanTerm
	case a.LoanInfo.Term != nil:
		terms.TermMonths = *a.LoanInfo.Term
	default:
		missing = append(missing, "loan_term")
	}

	if len(missing) > 0 {
		return schedule.LoanTerms{}, fmt.Errorf("%w: credit assessment %d has no %s",
			ErrMissingLoanTerms, a.ID, strings.Join(missing, ", "))
	}
	if err := terms.Validate(); err != nil {
		return schedule.LoanTerms{}, err
	}
	return terms, nil
}

// Build produces the .xlsx bytes of a tabular document. It performs no I/O.
func Build(kind model.DocumentType, data model.DocumentData, now time.Time) ([]byte, error) {
	var (
		sheet sheetSpec
		err   error
	)
	switch kind {
	case model.DocBangTinhLai:
		sheet, err = amortizationSheet(data, now)
	case model.DocLichTraNo:
		sheet, err = ledgerSheet(data, now)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if err != nil {
		return nil, err
	}
	return sheet.write(data.Customer, now)
}

// sheetSpec is everything that differs between the two reports.
type sheetSpec struct {
	name      string
	title     string
	principal int64
	// param is the seventh header row: the rate for the amortization table, the instalment for the ledger.
	paramLabel string
	paramValue any
	termMonths int
	columns    []string
	rows       [][]any
}

func amortizationSheet(data model.DocumentData, now time.Time) (sheetSpec, error) {
	terms, err := TermsFromAssessment(data.CreditAssessment)
	if err != nil {
		return sheetSpec{}, err
	}
	rows, err := schedule.ComputeAmortizationSchedule(terms, now)
	if err != nil {
		return sheetSpec{}, err
	}

	spec := sheetSpec{
		name:       "Bảng tính lãi",
		title:      "BẢNG TÍNH LÃI VAY",
		principal:  terms.Principal.Round(0).IntPart(),
		paramLabel: "Lãi suất (%/năm)",
		paramValue: terms.AnnualRatePercent,
		termMonths: terms.TermMonths,
		columns:    []string{"Kỳ", "Ngày đến hạn", "Dư nợ đầu kỳ", "Tiền gốc", "Tiền lãi", "Tổng phải trả"},
	}
	for _, r := range rows {
		spec.rows = append(spec.rows, []any{
			r.Period,
			r.DueDate.Format(dateLayout),
			r.PrincipalBalance.IntPart(),
			r.PrincipalPortion.IntPart(),
			r.InterestDue.IntPart(),
			r.TotalPayment.IntPart(),
		})
	}
	return spec, nil
}

func ledgerSheet(data model.DocumentData, now time.Time) (sheetSpec, error) {
	terms, err := resolveTerms(data.CreditAssessment, false)
	if err != nil {
		return sheetSpec{}, err
	}
	rows, err := schedule.ComputeFlatRepaymentSchedule(terms.Principal, terms.TermMonths, now)
	if err != nil {
		return sheetSpec{}, err
	}

	spec := sheetSpec{
		name:       "Lịch trả nợ",
		title:      "LỊCH TRẢ NỢ GỐC",
		principal:  terms.Principal.Round(0).IntPart(),
		paramLabel: "Số tiền mỗi kỳ",
		paramValue: rows[0].Amount.IntPart(),
		termMonths: terms.TermMonths,
		columns:    []string{"Kỳ", "Ngày đến hạn", "Số tiền", "Trạng thái"},
	}
	for _, r := range rows {
		spec.rows = append(spec.rows, []any{r.Period, r.DueDate.Format(dateLayout), r.Amount.IntPart(), r.Status})
	}
	return spec, nil
}

func (s sheetSpec) write(c *model.Customer, now time.Time) ([]byte, error) {
	if c == nil {
		c = &model.Customer{}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", s.name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := [][]any{
		{s.title},
		{"Khách hàng", c.FullName},
		{"CMND/CCCD", c.IDNumber},
		{"Điện thoại", c.Phone},
		{"Địa chỉ", c.Address},
		{"Số tiền vay", s.principal},
		{s.paramLabel, s.paramValue},
		{"Thời hạn (tháng)", s.termMonths},
		{"Ngày lập", now.Format(dateLayout)},
		toAny(s.columns),
	}
	all := append(header, s.rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := s.style(f); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s sheetSpec) style(f *excelize.File) error {
	for col, width := range columnWidths {
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(s.columns))
	if err != nil {
		return err
	}
	if err := f.MergeCell(s.name, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(s.name, "A1", "A1", title); err != nil {
		return err
	}
	headingRow := fmt.Sprint(HeaderRows)
	if err := f.SetCellStyle(s.name, "A"+headingRow, lastCol+headingRow, bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "B6", "B6", money); err != nil {
		return err
	}
	if len(s.rows) > 0 {
		first := fmt.Sprint(HeaderRows + 1)
		last := fmt.Sprint(HeaderRows + len(s.rows))
		if err := f.SetCellStyle(s.name, "C"+first, lastCol+last, money); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
