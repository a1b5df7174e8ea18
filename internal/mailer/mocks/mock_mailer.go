package mocks

import (
	"context"

	"creditdoc/internal/mailer"

	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Ready() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
