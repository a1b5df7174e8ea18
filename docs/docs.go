// Package docs holds the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List generated documents",
                "parameters": [
                    {"type": "integer", "default": 10, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.DocumentListResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": [
                    "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "tags": ["documents"],
                "summary": "Generate a credit document",
                "parameters": [
                    {"description": "Generation request", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/model.DocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/email": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Email a generated document",
                "parameters": [
                    {"description": "File name or URL and recipient", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/handler.emailRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/{fileName}": {
            "delete": {
                "tags": ["documents"],
                "summary": "Delete a generated document",
                "parameters": [
                    {"type": "string", "description": "Stored file name", "name": "fileName", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/templates/{documentType}": {
            "put": {
                "consumes": ["multipart/form-data"],
                "tags": ["templates"],
                "summary": "Upload a document template",
                "parameters": [
                    {"type": "string", "description": "Document type", "name": "documentType", "in": "path", "required": true},
                    {"type": "file", "description": "Template .docx", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.emailRequest": {
            "type": "object",
            "properties": {
                "file_name": {"type": "string"},
                "recipient": {"type": "string"}
            }
        },
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "model.DocumentRequest": {
            "type": "object",
            "properties": {
                "collateral_id": {"type": "integer"},
                "credit_assessment_id": {"type": "integer"},
                "customer_id": {"type": "integer"},
                "document_type": {
                    "type": "string",
                    "enum": ["hop_dong_tin_dung", "hop_dong_the_chap", "to_trinh_tham_dinh", "bien_ban_dinh_gia",
                             "giay_de_nghi_vay_von", "bang_tinh_lai", "lich_tra_no"]
                },
                "export_type": {"type": "string", "enum": ["docx", "xlsx", "pdf"]}
            }
        },
        "model.GeneratedDocument": {
            "type": "object",
            "properties": {
                "assessment_id": {"type": "integer"},
                "collateral_id": {"type": "integer"},
                "content_type": {"type": "string"},
                "created_at": {"type": "string"},
                "customer_id": {"type": "integer"},
                "document_type": {"type": "string"},
                "file_name": {"type": "string"},
                "file_url": {"type": "string"},
                "id": {"type": "string"},
                "size": {"type": "integer"}
            }
        },
        "service.DocumentListResult": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.GeneratedDocument"}},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Credit Document API",
	Description:      "Generates, stores and delivers credit documents.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
