package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"creditdoc/internal/model"
	"creditdoc/internal/service"
)

const (
	HeaderFileName    = "X-File-Name"
	HeaderDocumentURL = "X-Document-Url"
	HeaderPersisted   = "X-Document-Persisted"
)

// emailRequest is the body of POST /documents/email.
type emailRequest struct {
	FileName  string `json:"file_name"`
	Recipient string `json:"recipient"`
}

// GenerateDocument renders or synthesizes a document and returns it as an attachment.
//
// @Summary  Generate a credit document
// @Tags     documents
// @Accept   json
// @Produce  application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param    request  body      model.DocumentRequest  true  "Generation request"
// @Success  200      {file}    binary
// @Failure  400      {object}  errorPayload
// @Failure  404      {object}  errorPayload
// @Failure  422      {object}  errorPayload
// @Failure  501      {object}  errorPayload
// @Router   /documents/generate [post]
func GenerateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.DocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON document request")
		}
		if req.ExportType == "" {
			req.ExportType = model.ExportDOCX
		}

		res, err := svc.Generate(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(HeaderFileName, res.FileName)
		c.Set(HeaderPersisted, strconv.FormatBool(res.Persisted))
		if res.BlobURL != "" {
			c.Set(HeaderDocumentURL, res.BlobURL)
		}
		c.Attachment(res.FileName)
		c.Set(fiber.HeaderContentType, res.ContentType)
		return c.Status(fiber.StatusOK).Send(res.Buffer)
	}
}

// EmailDocument sends a stored document to a recipient.
//
// @Summary  Email a generated document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    request  body      emailRequest  true  "File name or URL and recipient"
// @Success  202
// @Failure  400      {object}  errorPayload
// @Failure  404      {object}  errorPayload
// @Failure  502      {object}  errorPayload
// @Failure  503      {object}  errorPayload
// @Router   /documents/email [post]
func EmailDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req emailRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must contain file_name and recipient")
		}
		if req.FileName == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "file_name is required")
		}
		if err := svc.SendEmail(c.UserContext(), req.FileName, req.Recipient); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}

// DeleteDocument removes a generated document by file name.
//
// @Summary  Delete a generated document
// @Tags     documents
// @Param    fileName  path  string  true  "Stored file name"
// @Success  204
// @Failure  400  {object}  errorPayload
// @Failure  404  {object}  errorPayload
// @Router   /documents/{fileName} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deleted, err := svc.Delete(c.UserContext(), c.Params("fileName"))
		if err != nil {
			return writeServiceError(c, err)
		}
		if !deleted {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListDocuments lists indexed documents with limit & offset.
//
// @Summary  List generated documents
// @Tags     documents
// @Produce  json
// @Param    limit   query     int  false  "Page size"  default(10)
// @Param    offset  query     int  false  "Offset"     default(0)
// @Success  200     {object}  service.DocumentListResult
// @Failure  400     {object}  errorPayload
// @Router   /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadTemplate replaces the .docx template of a document type (multipart/form-data, field name: file).
//
// @Summary  Upload a document template
// @Tags     templates
// @Accept   multipart/form-data
// @Param    documentType  path      string  true  "Document type"
// @Param    file          formData  file    true  "Template .docx"
// @Success  204
// @Failure  400  {object}  errorPayload
// @Failure  422  {object}  errorPayload
// @Router   /templates/{documentType} [put]
func UploadTemplate(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		if err := svc.UploadTemplate(c.UserContext(), c.Params("documentType"), f, fh.Size); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
