package mocks

import (
	"context"

	"github.com/cinetick/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockTokenRepo struct {
	mock.Mock
	domain.TokenRepository
}

func (m *MockTokenRepo) Create(ctx context.Context, token *domain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepo) DeleteAllForUser(ctx context.Context, tokenScope string, userID int) error {
	args := m.Called(ctx, tokenScope, userID)
	return args.Error(0)
}
