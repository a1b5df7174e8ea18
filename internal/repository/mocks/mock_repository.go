package mocks

import (
	"context"

	"creditdoc/internal/model"
	"creditdoc/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockRecords struct {
	mock.Mock
}

func (m *MockRecords) FindCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockRecords) FindCollateral(ctx context.Context, id int64) (*model.Collateral, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Collateral), args.Error(1)
}

func (m *MockRecords) FindCreditAssessment(ctx context.Context, id int64) (*model.CreditAssessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreditAssessment), args.Error(1)
}

type MockGeneratedDocumentRepository struct {
	mock.Mock
}

func (m *MockGeneratedDocumentRepository) Create(ctx context.Context, doc *model.GeneratedDocument) (*model.GeneratedDocument, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeneratedDocument), args.Error(1)
}

func (m *MockGeneratedDocumentRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.GeneratedDocument], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.GeneratedDocument]), args.Error(1)
}

func (m *MockGeneratedDocumentRepository) DeleteByFileName(ctx context.Context, fileName string) error {
	args := m.Called(ctx, fileName)
	return args.Error(0)
}
