package mocks

import (
	"context"

	"github.com/cinetick/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockMovieRepo struct {
	mock.Mock
	domain.MovieRepository

	GetAllFunc func(context.Context, domain.MovieFilters) ([]*domain.Movie, *domain.Metadata, error)
}

func (m *MockMovieRepo) GetAll(ctx context.Context, filters domain.MovieFilters) ([]*domain.Movie, *domain.Metadata, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx, filters)
	}

	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*domain.Movie), args.Get(1).(*domain.Metadata), args.Error(2)
}

func (m *MockMovieRepo) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

func (m *MockMovieRepo) Create(ctx context.Context, movie *domain.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *MockMovieRepo) Update(ctx context.Context, movie *domain.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *MockMovieRepo) AddShowtime(ctx context.Context, showtime *domain.Showtime) error {
	args := m.Called(ctx, showtime)
	return args.Error(0)
}

func (m *MockMovieRepo) GetShowtimeById(ctx context.Context, movieId, showtimeId int) (*domain.Showtime, error) {
	args := m.Called(ctx, movieId, showtimeId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Showtime), args.Error(1)
}

func (m *MockMovieRepo) UpdateShowtime(ctx context.Context, showtime *domain.Showtime) error {
	args := m.Called(ctx, showtime)
	return args.Error(0)
}

func (m *MockMovieRepo) DeleteShowtime(ctx context.Context, movieId, showtimeId int) error {
	args := m.Called(ctx, movieId, showtimeId)
	return args.Error(0)
}
