package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"creditdoc/internal/model"
	"creditdoc/internal/schedule"
)

var now = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func readRows(t *testing.T, buf []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return sheets[0], rows
}

func assessment() *model.CreditAssessment {
	return &model.CreditAssessment{
		ID:             9,
		ApprovedAmount: ptr(decimal.NewFromInt(120_000_000)),
		InterestRate:   ptr(12.0),
		LoanTerm:       ptr(12),
	}
}

func TestBuild_InterestTable(t *testing.T) {
	data := model.DocumentData{
		Customer:         &model.Customer{ID: 7, FullName: "Trần Thị Bình", IDNumber: "079123456789"},
		CreditAssessment: assessment(),
	}

	buf, err := Build(model.DocBangTinhLai, data, now)
	require.NoError(t, err)

	sheet, rows := readRows(t, buf)
	assert.Equal(t, "Bảng tính lãi", sheet)
	require.Len(t, rows, 12+HeaderRows)

	assert.Equal(t, "BẢNG TÍNH LÃI VAY", rows[0][0])
	assert.Equal(t, []string{"Khách hàng", "Trần Thị Bình"}, rows[1])
	assert.Equal(t, "120000000", rows[5][1])
	assert.Equal(t, "Kỳ", rows[HeaderRows-1][0])

	first := rows[HeaderRows]
	assert.Equal(t, "1", first[0])
	assert.Equal(t, "15/04/2024", first[1])
	assert.Equal(t, "120000000", first[2])
	assert.Equal(t, "1200000", first[4])
	assert.Equal(t, "10661855", first[5])

	assert.Equal(t, "12", rows[len(rows)-1][0])
}

func TestBuild_RepaymentLedger(t *testing.T) {
	a := &model.CreditAssessment{
		ID: 3,
		LoanInfo: model.LoanInfo{
			Amount: ptr(decimal.NewFromInt(10_000_000)),
			Term:   ptr(3),
		},
	}

	buf, err := Build(model.DocLichTraNo, model.DocumentData{CreditAssessment: a}, now)
	require.NoError(t, err)

	sheet, rows := readRows(t, buf)
	assert.Equal(t, "Lịch trả nợ", sheet)
	require.Len(t, rows, 3+HeaderRows)
	assert.Equal(t, []string{"1", "15/04/2024", "3333333", "Pending"}, rows[HeaderRows])
	assert.Equal(t, []string{"3", "15/06/2024", "3333334", "Pending"}, rows[HeaderRows+2])
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		kind    model.DocumentType
		data    model.DocumentData
		wantErr error
	}{
		{
			name:    "no assessment",
			kind:    model.DocBangTinhLai,
			wantErr: ErrMissingLoanTerms,
		},
		{
			name:    "missing rate",
			kind:    model.DocBangTinhLai,
			data:    model.DocumentData{CreditAssessment: &model.CreditAssessment{ID: 1, ApprovedAmount: ptr(decimal.NewFromInt(5)), LoanTerm: ptr(2)}},
			wantErr: ErrMissingLoanTerms,
		},
		{
			name:    "missing term for ledger",
			kind:    model.DocLichTraNo,
			data:    model.DocumentData{CreditAssessment: &model.CreditAssessment{ID: 1, ApprovedAmount: ptr(decimal.NewFromInt(5))}},
			wantErr: ErrMissingLoanTerms,
		},
		{
			name: "ledger term above cap",
			kind: model.DocLichTraNo,
			data: model.DocumentData{CreditAssessment: &model.CreditAssessment{ID: 1,
				ApprovedAmount: ptr(decimal.NewFromInt(5)), LoanTerm: ptr(1 << 40)}},
			wantErr: schedule.ErrInvalidLoanTerms,
		},
		{
			name: "interest table term above cap",
			kind: model.DocBangTinhLai,
			data: model.DocumentData{CreditAssessment: &model.CreditAssessment{ID: 1,
				ApprovedAmount: ptr(decimal.NewFromInt(5)), InterestRate: ptr(12.0), LoanTerm: ptr(3000)}},
			wantErr: schedule.ErrInvalidLoanTerms,
		},
		{
			name:    "template document type",
			kind:    model.DocHopDongTinDung,
			data:    model.DocumentData{CreditAssessment: assessment()},
			wantErr: ErrUnsupportedKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Build(tt.kind, tt.data, now)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, buf)
		})
	}
}

func TestTermsFromAssessment(t *testing.T) {
	t.Run("top-level values win", func(t *testing.T) {
		a := assessment()
		a.LoanInfo = model.LoanInfo{Amount: ptr(decimal.NewFromInt(1)), Interest: ptr(1.0), Term: ptr(1)}

		terms, err := TermsFromAssessment(a)
		require.NoError(t, err)
		assert.True(t, terms.Principal.Equal(decimal.NewFromInt(120_000_000)))
		assert.Equal(t, 12.0, terms.AnnualRatePercent)
		assert.Equal(t, 12, terms.TermMonths)
	})

	t.Run("missing fields are listed", func(t *testing.T) {
		_, err := TermsFromAssessment(&model.CreditAssessment{ID: 4})
		require.ErrorIs(t, err, ErrMissingLoanTerms)
		assert.Contains(t, err.Error(), "approved_amount, interest_rate, loan_term")
	})

	t.Run("zero principal is rejected", func(t *testing.T) {
		a := assessment()
		a.ApprovedAmount = ptr(decimal.Zero)
		_, err := TermsFromAssessment(a)
		assert.Error(t, err)
	})
}
