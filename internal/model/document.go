package model

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType identifies one of the credit documents the service can produce.
type DocumentType string

const (
	DocHopDongTinDung   DocumentType = "hop_dong_tin_dung"    // credit contract
	DocHopDongTheChap   DocumentType = "hop_dong_the_chap"    // mortgage contract
	DocToTrinhThamDinh  DocumentType = "to_trinh_tham_dinh"   // appraisal report
	DocBienBanDinhGia   DocumentType = "bien_ban_dinh_gia"    // collateral valuation record
	DocGiayDeNghiVayVon DocumentType = "giay_de_nghi_vay_von" // loan application
	DocBangTinhLai      DocumentType = "bang_tinh_lai"        // interest calculation table
	DocLichTraNo        DocumentType = "lich_tra_no"          // repayment ledger
)

// DocumentTypes lists every supported document type in a stable order.
var DocumentTypes = []DocumentType{
	DocHopDongTinDung,
	DocHopDongTheChap,
	DocToTrinhThamDinh,
	DocBienBanDinhGia,
	DocGiayDeNghiVayVon,
	DocBangTinhLai,
	DocLichTraNo,
}

// ParseDocumentType validates s against the closed set of document types.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

func (t DocumentType) Valid() bool {
	switch t {
	case DocHopDongTinDung, DocHopDongTheChap, DocToTrinhThamDinh, DocBienBanDinhGia,
		DocGiayDeNghiVayVon, DocBangTinhLai, DocLichTraNo:
		return true
	default:
		return false
	}
}

// IsTabular reports whether the type is synthesized as a spreadsheet instead of rendered from a template.
func (t DocumentType) IsTabular() bool {
	return t == DocBangTinhLai || t == DocLichTraNo
}

// ExportType is the output file format requested by the caller.
type ExportType string

const (
	ExportDOCX ExportType = "docx"
	ExportXLSX ExportType = "xlsx"
	ExportPDF  ExportType = "pdf"
)

const (
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// ContentType returns the MIME type of files produced for e.
func (e ExportType) ContentType() string {
	switch e {
	case ExportDOCX:
		return ContentTypeDOCX
	case ExportXLSX:
		return ContentTypeXLSX
	case ExportPDF:
		return ContentTypePDF
	default:
		return "application/octet-stream"
	}
}

func (e ExportType) Valid() bool {
	return e == ExportDOCX || e == ExportXLSX || e == ExportPDF
}

// DocumentRequest is the input of one generation call.
type DocumentRequest struct {
	DocumentType       DocumentType `json:"document_type"`
	CustomerID         int64        `json:"customer_id"`
	CollateralID       *int64       `json:"collateral_id,omitempty"`
	CreditAssessmentID *int64       `json:"credit_assessment_id,omitempty"`
	ExportType         ExportType   `json:"export_type"`
}

// DocumentData is the read-only snapshot of records used for a single render.
type DocumentData struct {
	Customer         *Customer
	Collateral       *Collateral
	CreditAssessment *CreditAssessment
}

// GeneratedDocument is the metadata record indexed for every persisted result.
// This is a pure domain model with no database-specific dependencies or tags.
type GeneratedDocument struct {
	ID           string       `json:"id"`
	DocumentType DocumentType `json:"document_type"`
	CustomerID   int64        `json:"customer_id"`
	CollateralID *int64       `json:"collateral_id,omitempty"`
	AssessmentID *int64       `json:"assessment_id,omitempty"`
	FileName     string       `json:"file_name"`
	FileURL      string       `json:"file_url"` // object key when stored, presigned URL when listed
	ContentType  string       `json:"content_type"`
	Size         int64        `json:"size"`
	CreatedAt    time.Time    `json:"created_at"`
}
