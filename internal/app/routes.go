package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("movie-booking-api", otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/health", app.GetHealth)

	r.Post("/users", app.RegisterUser)
	r.Put("/users/activation", app.ActivateUser)
	r.Post("/sessions", app.Login)
	r.Delete("/sessions", app.Logout)

	r.Get("/movies", app.GetMovies)
	r.Get("/movies/{movieId}", app.GetMovie)

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication)

		r.Get("/users/me", app.GetCurrentUser)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", app.CreateBooking)
			r.Get("/", app.GetUserBookings)
			r.Get("/{bookingId}", app.GetBooking)
			r.Post("/{bookingId}/cancel", app.CancelBooking)
			r.Get("/code/{code}", app.GetBookingByCode)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication)
		r.Use(app.requireAdmin)

		r.Post("/movies", app.CreateMovie)
		r.Patch("/movies/{movieId}", app.UpdateMovie)

		r.Route("/movies/{movieId}/showtimes", func(r chi.Router) {
			r.Post("/", app.AddShowtime)
			r.Patch("/{showtimeId}", app.UpdateShowtime)
			r.Delete("/{showtimeId}", app.DeleteShowtime)
		})

		r.Patch("/bookings/{bookingId}/status", app.UpdateBookingStatus)
	})

	return r
}
