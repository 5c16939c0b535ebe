package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cinetick/movie-booking-system/api"
	"github.com/cinetick/movie-booking-system/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CancellationWindow is the minimum lead time before a showtime starts
// during which a booking can still be cancelled.
const CancellationWindow = 2 * time.Hour

func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	userId := app.contextGetUserId(r)

	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), input.MovieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Movie not found")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	showtime := movie.FindShowtime(input.ShowtimeDate.Time, input.ShowtimeTime)
	if showtime == nil {
		app.errorResponse(w, r, http.StatusNotFound, "Showtime not found for the selected date and time")
		return
	}

	if showtime.AvailableSeats < input.Quantity {
		app.errorResponse(w, r, http.StatusBadRequest, "Not enough seats available for this showtime")
		return
	}

	// Advisory pre-scan so a conflict response can name the offending
	// seats. The booking_seats unique constraint is what actually closes
	// the race; see BookingRepository.Create.
	takenSeats, err := app.bookingRepo.GetActiveSeats(r.Context(), movie.ID, showtime.Date, showtime.Time)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	var conflicts []string
	for _, seat := range input.Seats {
		if slices.Contains(takenSeats, seat) {
			conflicts = append(conflicts, seat)
		}
	}

	if len(conflicts) > 0 {
		app.seatConflictResponse(w, r, conflicts)
		return
	}

	code, err := app.generateBookingCode(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	booking := domain.Booking{
		BookingCode:    code,
		UserID:         userId,
		MovieID:        movie.ID,
		MovieTitle:     movie.Title,
		MoviePosterUrl: movie.PosterUrl,
		ShowtimeDate:   showtime.Date,
		ShowtimeTime:   showtime.Time,
		Seats:          input.Seats,
		Quantity:       input.Quantity,
		TotalAmount:    showtime.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
		Status:         domain.BookingStatusPending,
		PaymentMethod:  domain.PaymentMethod(input.PaymentMethod),
		PaymentStatus:  domain.PaymentStatusPending,
	}

	if input.Notes != nil {
		booking.Notes = *input.Notes
	}

	err = app.bookingRepo.Create(r.Context(), &booking)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatsAlreadyBooked):
			logger.Warn("seat claim lost to a concurrent booking", "movieId", movie.ID)
			app.seatConflictResponse(w, r, input.Seats)
		case errors.Is(err, domain.ErrNotEnoughSeats):
			app.errorResponse(w, r, http.StatusBadRequest, "Not enough seats available for this showtime")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.sendBookingConfirmation(r, userId, &booking)

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(&booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	params := api.GetBookingsParams{
		Page:   app.readOptionalInt(r, "page"),
		Limit:  app.readOptionalInt(r, "limit"),
		Status: app.readOptionalString(r, "status"),
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.Limit != nil {
		pagination.PageSize = *params.Limit
	}

	var status domain.BookingStatus
	if params.Status != nil {
		status = domain.BookingStatus(*params.Status)
	}

	bookings, metadata, err := app.bookingRepo.GetAllByUser(r.Context(), userId, status, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: toBookingResponses(bookings),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingId, err := app.readIDParam(r, "bookingId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	booking, user, ok := app.loadBookingForUser(w, r, bookingId)
	if !ok {
		return
	}

	if booking.UserID != user.ID && !user.IsAdmin() {
		app.forbiddenResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingByCode(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	booking, err := app.bookingRepo.GetByCode(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if booking.UserID != user.ID && !user.IsAdmin() {
		app.forbiddenResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	bookingId, err := app.readIDParam(r, "bookingId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input api.CancelBookingRequest

	err = app.readJSON(w, r, &input)
	if err != nil && !errors.Is(err, errEmptyBody) {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	booking, user, ok := app.loadBookingForUser(w, r, bookingId)
	if !ok {
		return
	}

	isAdmin := user.IsAdmin()
	if booking.UserID != user.ID && !isAdmin {
		app.forbiddenResponse(w, r)
		return
	}

	switch booking.Status {
	case domain.BookingStatusCancelled:
		app.errorResponse(w, r, http.StatusBadRequest, "Booking is already cancelled")
		return
	case domain.BookingStatusCompleted:
		app.errorResponse(w, r, http.StatusBadRequest, "Completed bookings cannot be cancelled")
		return
	}

	start, err := booking.ShowtimeStart()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// The window applies to admins too: once inside the final two hours
	// the seats are considered committed.
	if time.Until(start) < CancellationWindow {
		app.errorResponse(w, r, http.StatusBadRequest, "Bookings can only be cancelled at least 2 hours before the showtime")
		return
	}

	now := time.Now()
	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = &now

	if isAdmin && booking.UserID != user.ID {
		booking.CancelledBy = domain.CancelledByAdmin
		booking.CancellationReason = "Cancelled by admin"
	} else {
		booking.CancelledBy = domain.CancelledByUser
		booking.CancellationReason = "Cancelled by user"
	}

	if input.Reason != nil && *input.Reason != "" {
		booking.CancellationReason = *input.Reason
	}

	if booking.PaymentStatus == domain.PaymentStatusPaid {
		booking.PaymentStatus = domain.PaymentStatusRefunded
	}

	err = app.bookingRepo.Cancel(r.Context(), booking)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	logger.Info("booking cancelled", "bookingId", booking.ID, "cancelledBy", booking.CancelledBy)

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	bookingId, err := app.readIDParam(r, "bookingId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input api.UpdateBookingStatusRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	booking, err := app.bookingRepo.GetById(r.Context(), bookingId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if !booking.Status.IsActive() {
		app.errorResponse(w, r, http.StatusBadRequest, "Only pending or confirmed bookings can change status")
		return
	}

	booking.Status = domain.BookingStatus(input.Status)
	if booking.Status == domain.BookingStatusConfirmed {
		booking.PaymentStatus = domain.PaymentStatusPaid
	}

	err = app.bookingRepo.UpdateStatus(r.Context(), booking)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// loadBookingForUser fetches the booking and the requesting user together,
// writing the error response itself when either lookup fails.
func (app *Application) loadBookingForUser(w http.ResponseWriter, r *http.Request, bookingId int) (*domain.Booking, *domain.User, bool) {
	booking, err := app.bookingRepo.GetById(r.Context(), bookingId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return nil, nil, false
	}

	user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return nil, nil, false
	}

	return booking, user, true
}

// generateBookingCode draws candidates until one is unused. There is no
// retry cap; with 36^8 possible codes collisions stay rare long past any
// realistic booking volume, and the unique index on booking_code is the
// final backstop.
func (app *Application) generateBookingCode(ctx context.Context) (string, error) {
	for {
		code, err := domain.GenerateBookingCode()
		if err != nil {
			return "", err
		}

		exists, err := app.bookingRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}

		if !exists {
			return code, nil
		}
	}
}

func (app *Application) sendBookingConfirmation(r *http.Request, userId int, booking *domain.Booking) {
	// the request context is cancelled once the handler returns, but the
	// mail goroutine still needs its trace values for the DB lookup
	go func(ctx context.Context) {
		gLogger := app.contextGetLogger(r.WithContext(ctx))

		defer func() {
			if err := recover(); err != nil {
				gLogger.Error("panic occurred during sending booking confirmation mail", "panic", err)
			}
		}()

		user, err := app.userRepo.GetById(ctx, userId)
		if err != nil {
			gLogger.Error("failed to load user for booking confirmation", "error", err)
			return
		}

		data := map[string]any{
			"bookingCode":  booking.BookingCode,
			"movieTitle":   booking.MovieTitle,
			"showtimeDate": booking.ShowtimeDate.Format("2006-01-02"),
			"showtimeTime": booking.ShowtimeTime,
			"seats":        strings.Join(booking.Seats, ", "),
			"totalAmount":  booking.TotalAmount.StringFixed(2),
		}

		err = app.mailer.Send(user.Email, "booking_confirmation.tmpl", data)
		if err != nil {
			gLogger.Error("failed to send booking confirmation email", "error", err)
		} else {
			gLogger.Info("booking confirmation email sent successfully")
		}
	}(context.WithoutCancel(r.Context()))
}

func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request, seats []string) {
	message := fmt.Sprintf("Seats already booked: %s", strings.Join(seats, ", "))
	app.errorResponse(w, r, http.StatusBadRequest, message)
}

func toBookingResponses(bookings []*domain.Booking) []api.BookingResponse {
	responses := make([]api.BookingResponse, len(bookings))

	for i, booking := range bookings {
		responses[i] = toBookingResponse(booking)
	}

	return responses
}

func toBookingResponse(booking *domain.Booking) api.BookingResponse {
	return api.BookingResponse{
		Id:                 booking.ID,
		BookingCode:        booking.BookingCode,
		MovieId:            booking.MovieID,
		MovieTitle:         booking.MovieTitle,
		MoviePosterUrl:     booking.MoviePosterUrl,
		ShowtimeDate:       api.Date{Time: booking.ShowtimeDate},
		ShowtimeTime:       booking.ShowtimeTime,
		Seats:              booking.Seats,
		Quantity:           booking.Quantity,
		TotalAmount:        booking.TotalAmount,
		Status:             string(booking.Status),
		PaymentMethod:      string(booking.PaymentMethod),
		PaymentStatus:      string(booking.PaymentStatus),
		Notes:              booking.Notes,
		CancelledAt:        booking.CancelledAt,
		CancelledBy:        booking.CancelledBy,
		CancellationReason: booking.CancellationReason,
		CreatedAt:          booking.CreatedAt,
	}
}
