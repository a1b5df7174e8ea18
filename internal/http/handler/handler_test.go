package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"creditdoc/internal/docx"
	"creditdoc/internal/http/middleware"
	"creditdoc/internal/model"
	"creditdoc/internal/service"
	serviceMocks "creditdoc/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Use(middleware.RequestID())
	app.Post("/documents/generate", GenerateDocument(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/documents/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.RequestIDHeader, "req-1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		want := model.DocumentRequest{DocumentType: model.DocHopDongTinDung, CustomerID: 7, ExportType: model.ExportDOCX}
		mockSvc.On("Generate", mock.Anything, want).Return(&service.GenerateResult{
			Buffer:      []byte("PK docx bytes"),
			FileName:    "hop_dong_tin_dung_7_20240315_103045.docx",
			ContentType: model.ContentTypeDOCX,
			BlobURL:     "https://minio.local/credit/results/hop_dong_tin_dung_7_20240315_103045.docx",
			Persisted:   true,
		}, nil).Once()

		resp := post(`{"document_type":"hop_dong_tin_dung","customer_id":7}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, model.ContentTypeDOCX, resp.Header.Get("Content-Type"))
		assert.Equal(t, "hop_dong_tin_dung_7_20240315_103045.docx", resp.Header.Get(HeaderFileName))
		assert.Equal(t, "true", resp.Header.Get(HeaderPersisted))
		assert.Contains(t, resp.Header.Get(HeaderDocumentURL), "results/hop_dong_tin_dung_7")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="hop_dong_tin_dung_7_20240315_103045.docx"`)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "PK docx bytes", string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp := post(`{"customer_id":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_BODY", body.Error.Code)
		assert.Equal(t, "req-1", body.RequestID)
	})

	syntaxErr := fmt.Errorf("%w: %w", service.ErrTemplateSyntax, &docx.RenderError{
		Kind:   docx.KindUnclosedTag,
		Issues: []docx.TagIssue{{Kind: docx.KindUnclosedTag, Part: "word/document.xml", Excerpt: "{customer_name"}},
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"invalid input", fmt.Errorf("%w: customer_id is required", service.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT", "invalid input: customer_id is required"},
		{"record not found", fmt.Errorf("%w: customer 7", service.ErrNotFound), http.StatusNotFound, "NOT_FOUND", ""},
		{"template missing", fmt.Errorf("%w: upload a .docx to templates/hop_dong_tin_dung.docx", service.ErrTemplateMissing), http.StatusNotFound, "TEMPLATE_MISSING", "templates/hop_dong_tin_dung.docx"},
		{"template corrupt", fmt.Errorf("%w: missing word/document.xml", service.ErrTemplateCorrupt), http.StatusUnprocessableEntity, "TEMPLATE_CORRUPT", "word/document.xml"},
		{"template syntax", syntaxErr, http.StatusUnprocessableEntity, "TEMPLATE_SYNTAX", "unclosed tag"},
		{"pdf", fmt.Errorf("%w: pdf export is not supported", service.ErrUnsupportedExport), http.StatusNotImplemented, "UNSUPPORTED_EXPORT", ""},
		{"unclassified", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			resp := post(`{"document_type":"hop_dong_tin_dung","customer_id":7,"export_type":"docx"}`)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, body.Error.Message, tt.wantMsg)
			}
			assert.NotContains(t, body.Error.Message, "pq:")
		})
	}
}

func TestEmailDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/email", EmailDocument(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/documents/email", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("accepted", func(t *testing.T) {
		mockSvc.On("SendEmail", mock.Anything, "a.docx", "binh@example.com").Return(nil).Once()
		resp := post(`{"file_name":"a.docx","recipient":"binh@example.com"}`)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("missing file name", func(t *testing.T) {
		resp := post(`{"recipient":"binh@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("mail not configured", func(t *testing.T) {
		mockSvc.On("SendEmail", mock.Anything, "a.docx", "binh@example.com").
			Return(fmt.Errorf("%w: set SMTP_HOST", service.ErrMailNotConfigured)).Once()
		resp := post(`{"file_name":"a.docx","recipient":"binh@example.com"}`)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "MAIL_NOT_CONFIGURED", decodeError(t, resp).Error.Code)
	})

	t.Run("delivery failed", func(t *testing.T) {
		mockSvc.On("SendEmail", mock.Anything, "a.docx", "binh@example.com").
			Return(fmt.Errorf("%w: 535 authentication failed", service.ErrDelivery)).Once()
		resp := post(`{"file_name":"a.docx","recipient":"binh@example.com"}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "DELIVERY_FAILED", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:fileName", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "a.docx").Return(true, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/a.docx", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "b.docx").Return(false, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/b.docx", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid file name", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "a..docx").Return(false, fmt.Errorf("%w: \"a..docx\"", service.ErrInvalidFileName)).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/a..docx", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_FILE_NAME", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "c.docx").Return(false, errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/c.docx", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DocumentListResult{
			Items: []model.GeneratedDocument{{FileName: "a.docx", DocumentType: model.DocHopDongTinDung}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadTemplate(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Put("/templates/:documentType", UploadTemplate(mockSvc))

	upload := func(content string) *http.Response {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "template.docx")
		part.Write([]byte(content))
		writer.Close()

		req := httptest.NewRequest(http.MethodPut, "/templates/hop_dong_tin_dung", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("UploadTemplate", mock.Anything, "hop_dong_tin_dung", mock.Anything, int64(11)).Return(nil).Once()
		resp := upload("PK template")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("corrupt template", func(t *testing.T) {
		mockSvc.On("UploadTemplate", mock.Anything, "hop_dong_tin_dung", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: template is too small", service.ErrTemplateCorrupt)).Once()
		resp := upload("tiny")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "TEMPLATE_CORRUPT", decodeError(t, resp).Error.Code)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/templates/hop_dong_tin_dung", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockDocumentService)
	RegisterRoutes(app, nil, mockSvc)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("health without database", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestWriteServiceError_LogsInternalErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	mockSvc := new(serviceMocks.MockDocumentService)
	mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("pq: connection refused")).Once()

	app := fiber.New()
	app.Use(middleware.RequestID())
	app.Get("/documents", ListDocuments(mockSvc))

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-500")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "req-500", decodeError(t, resp).RequestID)

	entries := logs.FilterMessage("unhandled error").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-500", fields["request_id"])
	assert.Equal(t, "/documents", fields["path"])
	assert.Equal(t, "pq: connection refused", fields["error"])
}
