package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinetick/movie-booking-system/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

func (p *PostgresMovieRepository) GetAll(ctx context.Context, filters domain.MovieFilters) ([]*domain.Movie, *domain.Metadata, error) {
	query := fmt.Sprintf(`SELECT count(*) OVER(), id, title, description, release_date, poster_url
		FROM movies
		WHERE is_active = TRUE
			AND ((to_tsvector('english', title) @@ plainto_tsquery('english', $1)
				OR to_tsvector('english', description) @@ plainto_tsquery('english', $1))
				OR $1 = '')
		ORDER BY %s %s
		LIMIT $2 OFFSET $3`, filters.SortColumn(), filters.SortDirection())

	rows, err := p.db.Query(ctx, query, filters.Term, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	movies := []*domain.Movie{}

	for rows.Next() {
		var movie domain.Movie

		err := rows.Scan(
			&totalRecords,
			&movie.ID,
			&movie.Title,
			&movie.Description,
			&movie.ReleaseDate,
			&movie.PosterUrl,
		)

		if err != nil {
			return nil, nil, err
		}

		movies = append(movies, &movie)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, filters.Page, filters.PageSize)

	return movies, metadata, nil
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	query := `
		SELECT id, title, description, genres, language, release_date, duration,
			poster_url, director, cast_members, rating, is_active, featured, created_at, updated_at
		FROM movies
		WHERE id = $1 AND is_active = TRUE
	`

	var movie domain.Movie

	err := p.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Genres,
		&movie.Language,
		&movie.ReleaseDate,
		&movie.Duration,
		&movie.PosterUrl,
		&movie.Director,
		&movie.CastMembers,
		&movie.Rating,
		&movie.IsActive,
		&movie.Featured,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	showtimes, err := p.retrieveShowtimes(ctx, id)
	if err != nil {
		return nil, err
	}

	movie.Showtimes = showtimes

	return &movie, nil
}

func (p *PostgresMovieRepository) retrieveShowtimes(ctx context.Context, movieId int) ([]domain.Showtime, error) {
	query := `
		SELECT id, movie_id, show_date, show_time, price, total_seats, available_seats, is_active
		FROM showtimes
		WHERE movie_id = $1
		ORDER BY show_date, show_time
	`

	rows, err := p.db.Query(ctx, query, movieId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimes := make([]domain.Showtime, 0)

	for rows.Next() {
		var showtime domain.Showtime

		err := rows.Scan(
			&showtime.ID,
			&showtime.MovieID,
			&showtime.Date,
			&showtime.Time,
			&showtime.Price,
			&showtime.TotalSeats,
			&showtime.AvailableSeats,
			&showtime.IsActive,
		)

		if err != nil {
			return nil, err
		}

		showtimes = append(showtimes, showtime)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showtimes, nil
}

func (p *PostgresMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	query := `
		INSERT INTO movies (title, description, genres, language, release_date, duration,
			poster_url, director, cast_members, rating, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, is_active, created_at, updated_at
	`

	return p.db.QueryRow(ctx, query,
		movie.Title,
		movie.Description,
		movie.Genres,
		movie.Language,
		movie.ReleaseDate,
		movie.Duration,
		movie.PosterUrl,
		movie.Director,
		movie.CastMembers,
		movie.Rating,
		movie.Featured,
	).Scan(&movie.ID, &movie.IsActive, &movie.CreatedAt, &movie.UpdatedAt)
}

func (p *PostgresMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	query := `
		UPDATE movies
		SET title = $1, description = $2, genres = $3, language = $4, release_date = $5,
			duration = $6, poster_url = $7, director = $8, cast_members = $9, rating = $10,
			featured = $11, is_active = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at
	`

	err := p.db.QueryRow(ctx, query,
		movie.Title,
		movie.Description,
		movie.Genres,
		movie.Language,
		movie.ReleaseDate,
		movie.Duration,
		movie.PosterUrl,
		movie.Director,
		movie.CastMembers,
		movie.Rating,
		movie.Featured,
		movie.IsActive,
		movie.ID,
	).Scan(&movie.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	}

	return nil
}

func (p *PostgresMovieRepository) AddShowtime(ctx context.Context, showtime *domain.Showtime) error {
	query := `
		INSERT INTO showtimes (movie_id, show_date, show_time, price, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, available_seats, is_active
	`

	err := p.db.QueryRow(ctx, query,
		showtime.MovieID,
		showtime.Date,
		showtime.Time,
		showtime.Price,
		showtime.TotalSeats,
	).Scan(&showtime.ID, &showtime.AvailableSeats, &showtime.IsActive)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgerrcode.UniqueViolation:
				return domain.ErrDuplicateShowtime
			case pgErr.Code == pgerrcode.ForeignKeyViolation:
				return domain.ErrRecordNotFound
			}
		}

		return err
	}

	return nil
}

func (p *PostgresMovieRepository) GetShowtimeById(ctx context.Context, movieId, showtimeId int) (*domain.Showtime, error) {
	query := `
		SELECT id, movie_id, show_date, show_time, price, total_seats, available_seats, is_active
		FROM showtimes
		WHERE id = $1 AND movie_id = $2
	`

	var showtime domain.Showtime

	err := p.db.QueryRow(ctx, query, showtimeId, movieId).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.Date,
		&showtime.Time,
		&showtime.Price,
		&showtime.TotalSeats,
		&showtime.AvailableSeats,
		&showtime.IsActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &showtime, nil
}

func (p *PostgresMovieRepository) UpdateShowtime(ctx context.Context, showtime *domain.Showtime) error {
	query := `
		UPDATE showtimes
		SET show_date = $1, show_time = $2, price = $3, total_seats = $4,
			available_seats = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7 AND movie_id = $8
	`

	tag, err := p.db.Exec(ctx, query,
		showtime.Date,
		showtime.Time,
		showtime.Price,
		showtime.TotalSeats,
		showtime.AvailableSeats,
		showtime.IsActive,
		showtime.ID,
		showtime.MovieID,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateShowtime
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresMovieRepository) DeleteShowtime(ctx context.Context, movieId, showtimeId int) error {
	query := `DELETE FROM showtimes WHERE id = $1 AND movie_id = $2`

	tag, err := p.db.Exec(ctx, query, showtimeId, movieId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
