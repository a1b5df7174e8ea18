package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"creditdoc/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	docs := app.Group("/documents")
	docs.Get("/", ListDocuments(docSvc))
	docs.Post("/generate", GenerateDocument(docSvc))
	docs.Post("/email", EmailDocument(docSvc))
	docs.Delete("/:fileName", DeleteDocument(docSvc))

	app.Put("/templates/:documentType", UploadTemplate(docSvc))
}
