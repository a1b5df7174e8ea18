// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
package repository

import (
	"context"
	"errors"

	"creditdoc/internal/model"
)

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("record not found")

// CustomerReader loads loan applicants.
type CustomerReader interface {
	FindCustomer(ctx context.Context, id int64) (*model.Customer, error)
}

// CollateralReader loads pledged assets.
type CollateralReader interface {
	FindCollateral(ctx context.Context, id int64) (*model.Collateral, error)
}

// CreditAssessmentReader loads approved loan terms.
type CreditAssessmentReader interface {
	FindCreditAssessment(ctx context.Context, id int64) (*model.CreditAssessment, error)
}

// GeneratedDocumentRepository indexes generated files. Strictly persistence operations.
type GeneratedDocumentRepository interface {
	Create(ctx context.Context, doc *model.GeneratedDocument) (*model.GeneratedDocument, error)

	// List returns a paginated list of documents, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.GeneratedDocument], error)

	// DeleteByFileName removes the index row of a file. Deleting an unknown name is not an error.
	DeleteByFileName(ctx context.Context, fileName string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
