package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinetick/movie-booking-system/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// Create inserts the booking, claims one row per seat in booking_seats, and
// decrements the showtime counter, all in one transaction. Two concurrent
// requests for the same seat therefore cannot both commit: the loser hits
// the unique claim constraint. Likewise the decrement is conditional on
// sufficient headroom, so the counter can never go negative.
func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO bookings (booking_code, user_id, movie_id, show_date, show_time,
				seats, quantity, total_amount, status, payment_method, payment_status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at
		`

		err := tx.QueryRow(ctx, query,
			booking.BookingCode,
			booking.UserID,
			booking.MovieID,
			booking.ShowtimeDate,
			booking.ShowtimeTime,
			booking.Seats,
			booking.Quantity,
			booking.TotalAmount,
			booking.Status,
			booking.PaymentMethod,
			booking.PaymentStatus,
			booking.Notes,
		).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(booking.Seats))
		for _, seat := range booking.Seats {
			rows = append(rows, []any{
				booking.ID,
				booking.MovieID,
				booking.ShowtimeDate,
				booking.ShowtimeTime,
				seat,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "movie_id", "show_date", "show_time", "seat_label"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return err
		}

		query = `
			UPDATE showtimes
			SET available_seats = available_seats - $1, updated_at = NOW()
			WHERE movie_id = $2 AND show_date = $3 AND show_time = $4
				AND is_active = TRUE AND available_seats >= $1
		`

		tag, err := tx.Exec(ctx, query,
			booking.Quantity,
			booking.MovieID,
			booking.ShowtimeDate,
			booking.ShowtimeTime,
		)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrNotEnoughSeats
		}

		return nil
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "booking_seats_claim_key":
				return domain.ErrSeatsAlreadyBooked
			case "bookings_booking_code_key":
				return domain.ErrDuplicateBookingCode
			}
		}

		return err
	}

	return nil
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id int) (*domain.Booking, error) {
	query := bookingSelect + ` WHERE b.id = $1`

	return p.getOne(ctx, query, id)
}

func (p *PostgresBookingRepository) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	query := bookingSelect + ` WHERE b.booking_code = $1`

	return p.getOne(ctx, query, code)
}

const bookingSelect = `
	SELECT b.id, b.booking_code, b.user_id, b.movie_id, m.title, m.poster_url,
		b.show_date, b.show_time, b.seats, b.quantity, b.total_amount,
		b.status, b.payment_method, b.payment_status, b.notes,
		b.cancelled_at, b.cancelled_by, b.cancellation_reason,
		b.created_at, b.updated_at
	FROM bookings b
	JOIN movies m ON b.movie_id = m.id`

func (p *PostgresBookingRepository) getOne(ctx context.Context, query string, arg any) (*domain.Booking, error) {
	var booking domain.Booking
	var cancelledBy, cancellationReason, notes *string

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&booking.ID,
		&booking.BookingCode,
		&booking.UserID,
		&booking.MovieID,
		&booking.MovieTitle,
		&booking.MoviePosterUrl,
		&booking.ShowtimeDate,
		&booking.ShowtimeTime,
		&booking.Seats,
		&booking.Quantity,
		&booking.TotalAmount,
		&booking.Status,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&notes,
		&booking.CancelledAt,
		&cancelledBy,
		&cancellationReason,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	if notes != nil {
		booking.Notes = *notes
	}
	if cancelledBy != nil {
		booking.CancelledBy = *cancelledBy
	}
	if cancellationReason != nil {
		booking.CancellationReason = *cancellationReason
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) GetAllByUser(
	ctx context.Context,
	userId int,
	status domain.BookingStatus,
	pagination domain.Pagination) ([]*domain.Booking, *domain.Metadata, error) {

	query := `
		SELECT count(*) OVER(), b.id, b.booking_code, b.movie_id, m.title, m.poster_url,
			b.show_date, b.show_time, b.seats, b.quantity, b.total_amount,
			b.status, b.payment_method, b.payment_status, b.created_at
		FROM bookings b
		JOIN movies m ON b.movie_id = m.id
		WHERE b.user_id = $1 AND ($2 = '' OR b.status = $2)
		ORDER BY b.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := p.db.Query(ctx, query, userId, string(status), pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	totalRecords := 0

	for rows.Next() {
		booking := domain.Booking{UserID: userId}

		err := rows.Scan(
			&totalRecords,
			&booking.ID,
			&booking.BookingCode,
			&booking.MovieID,
			&booking.MovieTitle,
			&booking.MoviePosterUrl,
			&booking.ShowtimeDate,
			&booking.ShowtimeTime,
			&booking.Seats,
			&booking.Quantity,
			&booking.TotalAmount,
			&booking.Status,
			&booking.PaymentMethod,
			&booking.PaymentStatus,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, &booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return bookings, metadata, nil
}

func (p *PostgresBookingRepository) GetActiveSeats(
	ctx context.Context,
	movieId int,
	date time.Time,
	timeLabel string) ([]string, error) {

	query := `
		SELECT seat_label
		FROM booking_seats
		WHERE movie_id = $1 AND show_date = $2 AND show_time = $3
	`

	rows, err := p.db.Query(ctx, query, movieId, date, timeLabel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]string, 0)

	for rows.Next() {
		var seat string

		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (p *PostgresBookingRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_code = $1)`

	var exists bool

	err := p.db.QueryRow(ctx, query, code).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Cancel flips the booking into its terminal cancelled state and gives the
// seats back. The status guard in the UPDATE protects against a concurrent
// cancellation or completion of the same booking. The counter restore
// matches the showtime by its (date, time) identity; zero rows affected
// means the showtime was deleted or deactivated in the meantime, in which
// case the restore is skipped and the booking stays cancelled.
func (p *PostgresBookingRepository) Cancel(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET status = $1, cancelled_at = $2, cancelled_by = $3, cancellation_reason = $4,
				payment_status = $5, updated_at = NOW()
			WHERE id = $6 AND status IN ('pending', 'confirmed')
			RETURNING updated_at
		`

		err := tx.QueryRow(ctx, query,
			domain.BookingStatusCancelled,
			booking.CancelledAt,
			booking.CancelledBy,
			booking.CancellationReason,
			booking.PaymentStatus,
			booking.ID,
		).Scan(&booking.UpdatedAt)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEditConflict
			}

			return err
		}

		query = `DELETE FROM booking_seats WHERE booking_id = $1`

		_, err = tx.Exec(ctx, query, booking.ID)
		if err != nil {
			return err
		}

		query = `
			UPDATE showtimes
			SET available_seats = LEAST(total_seats, available_seats + $1), updated_at = NOW()
			WHERE movie_id = $2 AND show_date = $3 AND show_time = $4 AND is_active = TRUE
		`

		_, err = tx.Exec(ctx, query,
			booking.Quantity,
			booking.MovieID,
			booking.ShowtimeDate,
			booking.ShowtimeTime,
		)

		return err
	})
}

// UpdateStatus applies an admin-driven lifecycle transition. Completing a
// booking releases its seat claims without restoring the counter: the show
// has happened, those seats were used.
func (p *PostgresBookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET status = $1, payment_status = $2, updated_at = NOW()
			WHERE id = $3 AND status IN ('pending', 'confirmed')
			RETURNING updated_at
		`

		err := tx.QueryRow(ctx, query, booking.Status, booking.PaymentStatus, booking.ID).Scan(&booking.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEditConflict
			}

			return err
		}

		if booking.Status == domain.BookingStatusCompleted {
			query = `DELETE FROM booking_seats WHERE booking_id = $1`

			_, err = tx.Exec(ctx, query, booking.ID)
		}

		return err
	})
}
