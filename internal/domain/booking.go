package domain

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// IsActive reports whether the booking counts against seat inventory.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

const (
	CancelledByUser  = "user"
	CancelledByAdmin = "admin"
)

// Booking reserves a set of seat labels for one showtime. The showtime's
// (date, time) pair is copied onto the booking rather than referenced, so a
// booking survives edits to its showtime. Seats are immutable after
// creation; cancellation changes status only.
type Booking struct {
	ID                 int
	BookingCode        string
	UserID             int
	MovieID            int
	MovieTitle         string
	MoviePosterUrl     string
	ShowtimeDate       time.Time
	ShowtimeTime       string
	Seats              []string
	Quantity           int
	TotalAmount        decimal.Decimal
	Status             BookingStatus
	PaymentMethod      PaymentMethod
	PaymentStatus      PaymentStatus
	Notes              string
	CancelledAt        *time.Time
	CancelledBy        string
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ShowtimeStart resolves the booking's embedded (date, time) copy into an
// absolute instant, in the same way Showtime.StartTime does.
func (b *Booking) ShowtimeStart() (time.Time, error) {
	s := Showtime{Date: b.ShowtimeDate, Time: b.ShowtimeTime}
	return s.StartTime()
}

const (
	bookingCodeLength   = 8
	bookingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateBookingCode draws an 8-character code uniformly from [A-Z0-9].
// Uniqueness is the caller's concern; see Application.generateBookingCode.
func GenerateBookingCode() (string, error) {
	code := make([]byte, bookingCodeLength)
	alphabetSize := big.NewInt(int64(len(bookingCodeAlphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate booking code: %w", err)
		}

		code[i] = bookingCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}

type BookingRepository interface {
	// Create persists the booking, claims its seats, and decrements the
	// showtime's available seat count in one transaction. It returns
	// ErrSeatsAlreadyBooked if another active booking holds any of the
	// seats and ErrNotEnoughSeats if the showtime lacks headroom.
	Create(ctx context.Context, booking *Booking) error
	GetById(ctx context.Context, id int) (*Booking, error)
	GetByCode(ctx context.Context, code string) (*Booking, error)
	GetAllByUser(ctx context.Context, userId int, status BookingStatus, pagination Pagination) ([]*Booking, *Metadata, error)
	// GetActiveSeats returns the union of seat labels held by bookings
	// with status pending or confirmed for the given showtime identity.
	GetActiveSeats(ctx context.Context, movieId int, date time.Time, timeLabel string) ([]string, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// Cancel marks the booking cancelled, releases its seat claims, and
	// restores the showtime's available seat count. Restoration is skipped
	// silently when the showtime no longer exists.
	Cancel(ctx context.Context, booking *Booking) error
	UpdateStatus(ctx context.Context, booking *Booking) error
}
