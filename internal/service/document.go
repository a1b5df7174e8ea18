package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"creditdoc/internal/docx"
	"creditdoc/internal/logger"
	"creditdoc/internal/mailer"
	"creditdoc/internal/model"
	"creditdoc/internal/repository"
	"creditdoc/internal/spreadsheet"
	"creditdoc/internal/storage"
)

// MaxTemplateSize caps template uploads.
const MaxTemplateSize = 20 << 20

const fileTimestampLayout = "20060102_150405"

var fileNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var tracer = otel.Tracer("creditdoc/internal/service")

// GenerateResult is the outcome of a successful generation. Persisted is false when the
// buffer could not be stored; the buffer is still returned to the caller.
type GenerateResult struct {
	Buffer      []byte
	FileName    string
	ContentType string
	BlobURL     string
	Persisted   bool
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.GeneratedDocument `json:"data"`
	Total int                       `json:"total"`
}

// DocumentService defines the use cases for credit documents.
type DocumentService interface {
	// Generate fetches the request's records, produces the document and stores it under results/.
	Generate(ctx context.Context, req model.DocumentRequest) (*GenerateResult, error)

	// SendEmail mails a stored document. fileRef is a bare file name or a storage URL.
	SendEmail(ctx context.Context, fileRef, recipient string) error

	// Delete removes a generated document and reports whether any backend held it.
	Delete(ctx context.Context, fileName string) (bool, error)

	// List returns indexed documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// UploadTemplate validates a .docx and stores it as the template of documentType.
	UploadTemplate(ctx context.Context, documentType string, r io.Reader, size int64) error
}

// Dependencies are the collaborators of the document service. Documents, Local and Metrics are optional.
type Dependencies struct {
	Customers   repository.CustomerReader
	Collaterals repository.CollateralReader
	Assessments repository.CreditAssessmentReader
	Documents   repository.GeneratedDocumentRepository

	Store  storage.Storage
	Local  storage.Deleter
	Mailer mailer.Mailer

	Metrics       *Metrics
	Logger        *zap.Logger
	Location      *time.Location
	PresignExpiry time.Duration
	Now           func() time.Time
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	Dependencies
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(deps Dependencies) DocumentService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.PresignExpiry <= 0 {
		deps.PresignExpiry = 15 * time.Minute
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &documentService{Dependencies: deps}
}

// FileName is the name a generated document is stored under: {type}_{customerId}_{yyyyMMdd_HHmmss}.{ext}.
func FileName(docType model.DocumentType, customerID int64, export model.ExportType, at time.Time) string {
	return fmt.Sprintf("%s_%d_%s.%s", docType, customerID, at.Format(fileTimestampLayout), export)
}

func (s *documentService) Generate(ctx context.Context, req model.DocumentRequest) (res *GenerateResult, err error) {
	labels := documentLabels{documentType: "invalid", exportType: "invalid"}
	if req.DocumentType.Valid() {
		labels.documentType = string(req.DocumentType)
	}
	if req.ExportType.Valid() {
		labels.exportType = string(req.ExportType)
	}

	ctx, span := tracer.Start(ctx, "DocumentService.Generate")
	span.SetAttributes(
		attribute.String("document.type", labels.documentType),
		attribute.String("document.export_type", labels.exportType),
		attribute.Int64("customer.id", req.CustomerID),
	)
	if rid := logger.RequestID(ctx); rid != "" {
		span.SetAttributes(attribute.String("request.id", rid))
	}
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.Metrics.observeGenerate(labels, err)
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	data, err := s.fetchRecords(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.Now().In(s.Location)
	var buf []byte
	if req.ExportType == model.ExportXLSX {
		buf, err = spreadsheet.Build(req.DocumentType, data, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	} else {
		buf, err = s.renderTemplate(ctx, req.DocumentType, data, now)
		if err != nil {
			return nil, err
		}
	}

	res = &GenerateResult{
		Buffer:      buf,
		FileName:    FileName(req.DocumentType, req.CustomerID, req.ExportType, now),
		ContentType: req.ExportType.ContentType(),
	}
	span.SetAttributes(attribute.String("document.file_name", res.FileName), attribute.Int("document.size", len(buf)))

	s.persist(ctx, req, res, now)
	return res, nil
}

// validateRequest rejects malformed requests before any I/O.
func validateRequest(req model.DocumentRequest) error {
	if !req.DocumentType.Valid() {
		return fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, req.DocumentType)
	}
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	if req.CollateralID != nil && *req.CollateralID <= 0 {
		return fmt.Errorf("%w: collateral_id must be positive", ErrInvalidInput)
	}
	if req.CreditAssessmentID != nil && *req.CreditAssessmentID <= 0 {
		return fmt.Errorf("%w: credit_assessment_id must be positive", ErrInvalidInput)
	}

	switch req.ExportType {
	case model.ExportDOCX:
		return nil
	case model.ExportXLSX:
		if !req.DocumentType.IsTabular() {
			return fmt.Errorf("%w: xlsx export is only available for %s and %s",
				ErrUnsupportedExport, model.DocBangTinhLai, model.DocLichTraNo)
		}
		if req.CreditAssessmentID == nil {
			return fmt.Errorf("%w: credit_assessment_id is required for %s", ErrInvalidInput, req.DocumentType)
		}
		return nil
	case model.ExportPDF:
		return fmt.Errorf("%w: pdf export is not supported", ErrUnsupportedExport)
	default:
		return fmt.Errorf("%w: unknown export type %q", ErrInvalidInput, req.ExportType)
	}
}

// fetchRecords reads the three records concurrently and fails on the first error.
func (s *documentService) fetchRecords(ctx context.Context, req model.DocumentRequest) (model.DocumentData, error) {
	var data model.DocumentData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := s.Customers.FindCustomer(gctx, req.CustomerID)
		if err != nil {
			return lookupError(err)
		}
		data.Customer = c
		return nil
	})
	if req.CollateralID != nil {
		g.Go(func() error {
			c, err := s.Collaterals.FindCollateral(gctx, *req.CollateralID)
			if err != nil {
				return lookupError(err)
			}
			data.Collateral = c
			return nil
		})
	}
	if req.CreditAssessmentID != nil {
		g.Go(func() error {
			a, err := s.Assessments.FindCreditAssessment(gctx, *req.CreditAssessmentID)
			if err != nil {
				return lookupError(err)
			}
			data.CreditAssessment = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.DocumentData{}, err
	}
	return data, nil
}

func lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("load records: %w", err)
}

func (s *documentService) renderTemplate(ctx context.Context, docType model.DocumentType, data model.DocumentData, now time.Time) ([]byte, error) {
	key := storage.TemplateKey(string(docType))
	tpl, err := storage.ReadLimit(ctx, s.Store, key, MaxTemplateSize)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no template uploaded for %s, upload a .docx to %s (PUT /templates/%s)",
				ErrTemplateMissing, docType, key, docType)
		}
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrTemplateCorrupt, err)
		}
		return nil, fmt.Errorf("fetch template %s: %w", key, err)
	}

	if v := docx.Validate(tpl); !v.Valid {
		return nil, fmt.Errorf("%w: %s: %s", ErrTemplateCorrupt, key, v.Error)
	}

	out, err := docx.Render(tpl, BuildRenderData(data, now))
	if err != nil {
		var rerr *docx.RenderError
		if errors.As(err, &rerr) && rerr.IsSyntax() {
			return nil, fmt.Errorf("%w: %w", ErrTemplateSyntax, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return out, nil
}

// persist stores the result and indexes it. Failures are logged and leave Persisted false
// or the index incomplete; they never fail the generation.
func (s *documentService) persist(ctx context.Context, req model.DocumentRequest, res *GenerateResult, now time.Time) {
	log := logger.FromContext(ctx, s.Logger).With(zap.String("file_name", res.FileName))
	key := storage.ResultKey(res.FileName)

	_, err := s.Store.Put(ctx, key, bytes.NewReader(res.Buffer), storage.PutObjectOptions{
		Size:        int64(len(res.Buffer)),
		ContentType: res.ContentType,
		FileName:    res.FileName,
		Metadata: map[string]string{
			"document-type": string(req.DocumentType),
			"customer-id":   strconv.FormatInt(req.CustomerID, 10),
		},
	})
	if err != nil {
		log.Warn("document not persisted", zap.String("event", "document_persist_failed"), zap.Error(err))
		return
	}
	res.Persisted = true

	if u, err := s.Store.PresignGet(ctx, key, s.PresignExpiry); err != nil {
		log.Warn("presign failed", zap.String("event", "document_presign_failed"), zap.Error(err))
	} else {
		res.BlobURL = u
	}

	if s.Documents == nil {
		return
	}
	_, err = s.Documents.Create(ctx, &model.GeneratedDocument{
		ID:           uuid.NewString(),
		DocumentType: req.DocumentType,
		CustomerID:   req.CustomerID,
		CollateralID: req.CollateralID,
		AssessmentID: req.CreditAssessmentID,
		FileName:     res.FileName,
		FileURL:      key,
		ContentType:  res.ContentType,
		Size:         int64(len(res.Buffer)),
		CreatedAt:    now.UTC(),
	})
	if err != nil {
		log.Warn("document not indexed", zap.String("event", "document_index_failed"), zap.Error(err))
	}
}

func (s *documentService) SendEmail(ctx context.Context, fileRef, recipient string) (err error) {
	defer func() { s.Metrics.observeEmail(err) }()

	recipient = strings.TrimSpace(recipient)
	if recipient == "" || !strings.Contains(recipient, "@") {
		return fmt.Errorf("%w: a recipient address is required", ErrInvalidInput)
	}
	if err := s.Mailer.Ready(); err != nil {
		return fmt.Errorf("%w: %w", ErrMailNotConfigured, err)
	}

	name, err := resolveFileRef(fileRef)
	if err != nil {
		return err
	}

	buf, err := storage.ReadAll(ctx, s.Store, storage.ResultKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: document %s", ErrNotFound, name)
		}
		return fmt.Errorf("%w: fetch %s: %w", ErrDelivery, name, err)
	}

	err = s.Mailer.Send(ctx, mailer.Message{
		To:          recipient,
		Subject:     "Tài liệu tín dụng: " + name,
		Body:        "Kính gửi Quý khách,\n\nVui lòng xem tài liệu tín dụng đính kèm: " + name + ".\n",
		Attachments: []mailer.Attachment{{Name: name, Content: buf}},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	logger.FromContext(ctx, s.Logger).Info("document emailed", zap.String("event", "document_emailed"), zap.String("file_name", name))
	return nil
}

// resolveFileRef reduces a bare name, a storage key or a (presigned) URL to the stored file name.
func resolveFileRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		ref = u.Path
	}
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	name := path.Base(ref)
	if err := checkFileName(name); err != nil {
		return "", err
	}
	return name, nil
}

func checkFileName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || !fileNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return nil
}

func (s *documentService) Delete(ctx context.Context, fileName string) (bool, error) {
	if err := checkFileName(fileName); err != nil {
		return false, err
	}

	deleted, err := storage.DeleteFirst(ctx, storage.ResultKey(fileName),
		storage.Backend{Name: "object storage", Deleter: s.Store},
		storage.Backend{Name: "local results", Deleter: s.Local},
	)
	if !deleted {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("delete %s: %w", fileName, err)
		}
		return false, nil
	}

	if s.Documents != nil {
		if err := s.Documents.DeleteByFileName(ctx, fileName); err != nil {
			logger.FromContext(ctx, s.Logger).Warn("document index not cleaned", zap.String("file_name", fileName), zap.Error(err))
		}
	}
	return true, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	if s.Documents == nil {
		return &DocumentListResult{Items: []model.GeneratedDocument{}}, nil
	}

	res, err := s.Documents.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		res.Items[i].FileURL = s.downloadURL(ctx, res.Items[i].FileName)
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// downloadURL presigns the stored result. The index keeps only the object key.
func (s *documentService) downloadURL(ctx context.Context, fileName string) string {
	u, err := s.Store.PresignGet(ctx, storage.ResultKey(fileName), s.PresignExpiry)
	if err != nil {
		logger.FromContext(ctx, s.Logger).Warn("presign failed",
			zap.String("event", "document_presign_failed"), zap.String("file_name", fileName), zap.Error(err))
		return ""
	}
	return u
}

func (s *documentService) UploadTemplate(ctx context.Context, documentType string, r io.Reader, size int64) error {
	docType, err := model.ParseDocumentType(documentType)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if r == nil {
		return fmt.Errorf("%w: template file is required", ErrInvalidInput)
	}
	if size > MaxTemplateSize {
		return fmt.Errorf("%w: template exceeds %d bytes", ErrInvalidInput, MaxTemplateSize)
	}

	buf, err := io.ReadAll(io.LimitReader(r, MaxTemplateSize+1))
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if len(buf) > MaxTemplateSize {
		return fmt.Errorf("%w: template exceeds %d bytes", ErrInvalidInput, MaxTemplateSize)
	}
	if v := docx.Validate(buf); !v.Valid {
		return fmt.Errorf("%w: %s", ErrTemplateCorrupt, v.Error)
	}

	key := storage.TemplateKey(string(docType))
	if _, err := s.Store.Put(ctx, key, bytes.NewReader(buf), storage.PutObjectOptions{
		Size:        int64(len(buf)),
		ContentType: model.ContentTypeDOCX,
	}); err != nil {
		return fmt.Errorf("upload template: %w", err)
	}

	logger.FromContext(ctx, s.Logger).Info("template uploaded", zap.String("event", "template_uploaded"), zap.String("key", key), zap.Int("size", len(buf)))
	return nil
}
