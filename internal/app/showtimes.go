package app

import (
	"errors"
	"net/http"

	"github.com/cinetick/movie-booking-system/api"
	"github.com/cinetick/movie-booking-system/internal/domain"
)

func (app *Application) AddShowtime(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input api.CreateShowtimeRequest

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

	showtime := domain.Showtime{
		MovieID:        movieId,
		Date:           input.Date.Time,
		Time:           input.Time,
		Price:          input.Price,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		IsActive:       true,
	}

	err = app.movieRepo.AddShowtime(r.Context(), &showtime)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrDuplicateShowtime):
			logger.Warn("duplicate showtime slot", "movieId", movieId)
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusCreated, toShowtimeResponse(&showtime), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateShowtime(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	showtimeId, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input api.UpdateShowtimeRequest

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

	showtime, err := app.movieRepo.GetShowtimeById(r.Context(), movieId, showtimeId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if input.Date != nil {
		showtime.Date = input.Date.Time
	}
	if input.Time != nil {
		showtime.Time = *input.Time
	}
	if input.Price != nil {
		showtime.Price = *input.Price
	}
	if input.TotalSeats != nil {
		showtime.ApplyTotalSeats(*input.TotalSeats)
	}
	if input.IsActive != nil {
		showtime.IsActive = *input.IsActive
	}

	err = app.movieRepo.UpdateShowtime(r.Context(), showtime)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrDuplicateShowtime):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toShowtimeResponse(showtime), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteShowtime(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	showtimeId, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.movieRepo.DeleteShowtime(r.Context(), movieId, showtimeId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toShowtimeResponse(showtime *domain.Showtime) api.ShowtimeResponse {
	return api.ShowtimeResponse{
		Id:             showtime.ID,
		Date:           api.Date{Time: showtime.Date},
		Time:           showtime.Time,
		Price:          showtime.Price,
		TotalSeats:     showtime.TotalSeats,
		AvailableSeats: showtime.AvailableSeats,
		IsActive:       showtime.IsActive,
	}
}
