package postgres

import (
	"context"
	"database/sql"

	"creditdoc/internal/model"
	"creditdoc/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.GeneratedDocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.GeneratedDocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, document_type, customer_id, collateral_id, assessment_id, file_name, file_url, content_type, size, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*model.GeneratedDocument, error) {
	var (
		d            model.GeneratedDocument
		docType      string
		collateralID sql.NullInt64
		assessmentID sql.NullInt64
	)
	if err := s.Scan(
		&d.ID,
		&docType,
		&d.CustomerID,
		&collateralID,
		&assessmentID,
		&d.FileName,
		&d.FileURL,
		&d.ContentType,
		&d.Size,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.DocumentType = model.DocumentType(docType)
	if collateralID.Valid {
		d.CollateralID = &collateralID.Int64
	}
	if assessmentID.Valid {
		d.AssessmentID = &assessmentID.Int64
	}
	return &d, nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// Create inserts a new document row and returns the stored record.
// Regenerating a file with the same name replaces the previous row.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.GeneratedDocument) (*model.GeneratedDocument, error) {
	const q = `
		INSERT INTO generated_documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (file_name) DO UPDATE
		SET file_url = EXCLUDED.file_url, size = EXCLUDED.size, created_at = EXCLUDED.created_at
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		string(doc.DocumentType),
		doc.CustomerID,
		nullInt64(doc.CollateralID),
		nullInt64(doc.AssessmentID),
		doc.FileName,
		doc.FileURL,
		doc.ContentType,
		doc.Size,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.GeneratedDocument], error) {
	const qCount = `SELECT COUNT(*) FROM generated_documents`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM generated_documents
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.GeneratedDocument, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.GeneratedDocument]{
		Items: items,
		Total: total,
	}, nil
}

func (r *DocumentPostgres) DeleteByFileName(ctx context.Context, fileName string) error {
	const q = `DELETE FROM generated_documents WHERE file_name = $1`
	_, err := r.db.ExecContext(ctx, q, fileName)
	return err
}
