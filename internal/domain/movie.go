package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Movie struct {
	ID          int
	Title       string
	Description string
	Genres      []string
	Language    string
	ReleaseDate time.Time
	Duration    int
	PosterUrl   string
	Director    string
	CastMembers []string
	Rating      decimal.Decimal
	IsActive    bool
	Featured    bool
	Showtimes   []Showtime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Showtime is owned by its parent movie. Within one movie an active showtime
// is identified by its (date, time) pair; it has no meaning on its own.
type Showtime struct {
	ID             int
	MovieID        int
	Date           time.Time
	Time           string
	Price          decimal.Decimal
	TotalSeats     int
	AvailableSeats int
	IsActive       bool
}

// FindShowtime returns the movie's active showtime matching the given
// calendar day and time label, or nil. Dates are compared by day, never by
// instant, because bookings carry a plain date copied from the request.
func (m *Movie) FindShowtime(date time.Time, timeLabel string) *Showtime {
	for i := range m.Showtimes {
		s := &m.Showtimes[i]

		if s.IsActive && sameCalendarDay(s.Date, date) && s.Time == timeLabel {
			return s
		}
	}

	return nil
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// StartTime combines the showtime's date with its "HH:MM" label into an
// absolute instant in the server's location.
func (s *Showtime) StartTime() (time.Time, error) {
	t, err := time.Parse("15:04", s.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid showtime label %q: %w", s.Time, err)
	}

	return time.Date(
		s.Date.Year(), s.Date.Month(), s.Date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		time.Local,
	), nil
}

// ApplyTotalSeats resizes the showtime while preserving the number of seats
// already committed to active bookings. Only the committed count carries
// over; seat identities are tracked at the booking level.
func (s *Showtime) ApplyTotalSeats(newTotal int) {
	booked := s.TotalSeats - s.AvailableSeats

	s.TotalSeats = newTotal
	s.AvailableSeats = max(0, newTotal-booked)
}

type MovieFilters struct {
	Page     int
	PageSize int
	Term     string
	Sort     string
}

func (f MovieFilters) SortColumn() string {
	return Pagination{Sort: f.Sort}.SortColumn()
}

func (f MovieFilters) SortDirection() string {
	return Pagination{Sort: f.Sort}.SortDirection()
}

func (f MovieFilters) Limit() int {
	return f.PageSize
}

func (f MovieFilters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type MovieRepository interface {
	GetAll(ctx context.Context, filters MovieFilters) ([]*Movie, *Metadata, error)
	GetById(ctx context.Context, id int) (*Movie, error)
	Create(ctx context.Context, movie *Movie) error
	Update(ctx context.Context, movie *Movie) error
	AddShowtime(ctx context.Context, showtime *Showtime) error
	GetShowtimeById(ctx context.Context, movieId, showtimeId int) (*Showtime, error)
	UpdateShowtime(ctx context.Context, showtime *Showtime) error
	DeleteShowtime(ctx context.Context, movieId, showtimeId int) error
}
