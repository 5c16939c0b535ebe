// Package api contains the request and response types exchanged over the
// HTTP surface of the booking service.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar day serialized as "2006-01-02". Showtimes are matched
// by day, never by instant, so the wire format deliberately carries no time
// component.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected format %s", s, dateLayout)
	}

	d.Time = t

	return nil
}

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50,alpha"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50,alpha"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int       `json:"version"`
}

type UserActivationRequest struct {
	Token string `json:"token" validate:"required,len=43"`
}

type UserActivationResponse struct {
	Activated bool `json:"activated"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlreadyLoggedInResponse struct {
	Message string `json:"message"`
}

type MovieStatus string

const (
	NOWSHOWING MovieStatus = "NOW_SHOWING"
	COMINGSOON MovieStatus = "COMING_SOON"
)

type GetMoviesParams struct {
	Page     *int    `validate:"omitempty,min=1"`
	PageSize *int    `validate:"omitempty,min=1,max=100"`
	Term     *string `validate:"omitempty,max=100"`
	Sort     *string `validate:"omitempty,oneof=id title release_date rating -id -title -release_date -rating"`
}

type MovieSummary struct {
	Id          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	PosterUrl   string      `json:"posterUrl"`
	ReleaseDate Date        `json:"releaseDate"`
	Status      MovieStatus `json:"status"`
}

type MovieListResponse struct {
	Movies   []MovieSummary `json:"movies"`
	Metadata *Metadata      `json:"metadata"`
}

type ShowtimeResponse struct {
	Id             int             `json:"id"`
	Date           Date            `json:"date"`
	Time           string          `json:"time"`
	Price          decimal.Decimal `json:"price"`
	TotalSeats     int             `json:"totalSeats"`
	AvailableSeats int             `json:"availableSeats"`
	IsActive       bool            `json:"isActive"`
}

type MovieDetailResponse struct {
	Id          int                `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Genres      []string           `json:"genres"`
	Language    string             `json:"language"`
	Duration    int                `json:"duration"`
	Rating      decimal.Decimal    `json:"rating"`
	PosterUrl   string             `json:"posterUrl"`
	Director    string             `json:"director"`
	CastMembers []string           `json:"castMembers"`
	ReleaseDate Date               `json:"releaseDate"`
	Featured    bool               `json:"featured"`
	Showtimes   []ShowtimeResponse `json:"showtimes"`
}

type CreateMovieRequest struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"required,max=2000"`
	Genres      []string        `json:"genres" validate:"required,min=1,dive,min=2,max=30"`
	Language    string          `json:"language" validate:"required,min=2,max=30"`
	Duration    int             `json:"duration" validate:"required,min=1,max=600"`
	Rating      decimal.Decimal `json:"rating" validate:"omitempty"`
	PosterUrl   string          `json:"posterUrl" validate:"required,url"`
	Director    string          `json:"director" validate:"required,min=2,max=100"`
	CastMembers []string        `json:"castMembers" validate:"omitempty,dive,min=2,max=100"`
	ReleaseDate Date            `json:"releaseDate" validate:"required"`
	Featured    bool            `json:"featured"`
}

type UpdateMovieRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Genres      []string         `json:"genres" validate:"omitempty,min=1,dive,min=2,max=30"`
	Language    *string          `json:"language" validate:"omitempty,min=2,max=30"`
	Duration    *int             `json:"duration" validate:"omitempty,min=1,max=600"`
	Rating      *decimal.Decimal `json:"rating"`
	PosterUrl   *string          `json:"posterUrl" validate:"omitempty,url"`
	Director    *string          `json:"director" validate:"omitempty,min=2,max=100"`
	CastMembers []string         `json:"castMembers" validate:"omitempty,dive,min=2,max=100"`
	ReleaseDate *Date            `json:"releaseDate"`
	Featured    *bool            `json:"featured"`
	IsActive    *bool            `json:"isActive"`
}

type CreateShowtimeRequest struct {
	Date       Date            `json:"date" validate:"required"`
	Time       string          `json:"time" validate:"required,showtime"`
	Price      decimal.Decimal `json:"price" validate:"price"`
	TotalSeats int             `json:"totalSeats" validate:"required,min=1,max=1000"`
}

type UpdateShowtimeRequest struct {
	Date       *Date            `json:"date"`
	Time       *string          `json:"time" validate:"omitempty,showtime"`
	Price      *decimal.Decimal `json:"price" validate:"omitempty,price"`
	TotalSeats *int             `json:"totalSeats" validate:"omitempty,min=1,max=1000"`
	IsActive   *bool            `json:"isActive"`
}

type CreateBookingRequest struct {
	MovieId       int      `json:"movieId" validate:"required,min=1"`
	ShowtimeDate  Date     `json:"showtimeDate" validate:"required"`
	ShowtimeTime  string   `json:"showtimeTime" validate:"required,showtime"`
	Seats         []string `json:"seats" validate:"required,min=1,max=10,dive,seat"`
	Quantity      int      `json:"quantity" validate:"required,min=1,max=10"`
	PaymentMethod string   `json:"paymentMethod" validate:"required,oneof=credit_card debit_card upi wallet"`
	Notes         *string  `json:"notes" validate:"omitempty,max=500"`
}

type GetBookingsParams struct {
	Page   *int    `validate:"omitempty,min=1"`
	Limit  *int    `validate:"omitempty,min=1,max=100"`
	Status *string `validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

type BookingResponse struct {
	Id                 int             `json:"id"`
	BookingCode        string          `json:"bookingCode"`
	MovieId            int             `json:"movieId"`
	MovieTitle         string          `json:"movieTitle"`
	MoviePosterUrl     string          `json:"moviePosterUrl"`
	ShowtimeDate       Date            `json:"showtimeDate"`
	ShowtimeTime       string          `json:"showtimeTime"`
	Seats              []string        `json:"seats"`
	Quantity           int             `json:"quantity"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Status             string          `json:"status"`
	PaymentMethod      string          `json:"paymentMethod"`
	PaymentStatus      string          `json:"paymentStatus"`
	Notes              string          `json:"notes,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CancelledBy        string          `json:"cancelledBy,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type UserBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Metadata *Metadata         `json:"metadata"`
}

type CancelBookingRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed"`
}
