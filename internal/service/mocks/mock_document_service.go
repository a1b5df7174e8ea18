package mocks

import (
	"context"
	"io"

	"creditdoc/internal/model"
	"creditdoc/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Generate(ctx context.Context, req model.DocumentRequest) (*service.GenerateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateResult), args.Error(1)
}

func (m *MockDocumentService) SendEmail(ctx context.Context, fileRef, recipient string) error {
	args := m.Called(ctx, fileRef, recipient)
	return args.Error(0)
}

func (m *MockDocumentService) Delete(ctx context.Context, fileName string) (bool, error) {
	args := m.Called(ctx, fileName)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) UploadTemplate(ctx context.Context, documentType string, r io.Reader, size int64) error {
	args := m.Called(ctx, documentType, r, size)
	return args.Error(0)
}
