package integration_test

import (
	"log/slog"
	"os"

	"github.com/cinetick/movie-booking-system/internal/app"
	"github.com/cinetick/movie-booking-system/internal/mailer"
	"github.com/cinetick/movie-booking-system/internal/repository"
	appvalidator "github.com/cinetick/movie-booking-system/internal/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Mailer *mailer.MockMailer
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	userRepo := repository.NewPostgresUserRepository(db)
	tokenRepo := repository.NewPostgresTokenRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		sessionManager,
		userRepo,
		tokenRepo,
		movieRepo,
		bookingRepo,
	)

	return &TestApp{
		App:    application,
		DB:     db,
		Mailer: mailer,
	}, nil
}
