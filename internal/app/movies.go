package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinetick/movie-booking-system/api"
	"github.com/cinetick/movie-booking-system/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultSort     = "id"
)

func (app *Application) GetMovies(w http.ResponseWriter, r *http.Request) {
	params := api.GetMoviesParams{
		Page:     app.readOptionalInt(r, "page"),
		PageSize: app.readOptionalInt(r, "pageSize"),
		Term:     app.readOptionalString(r, "term"),
		Sort:     app.readOptionalString(r, "sort"),
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	filters := toMovieFilters(params)

	movies, metadata, err := app.movieRepo.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.MovieListResponse{
		Movies:   toMovieSummaries(movies),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieDetail(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var input api.CreateMovieRequest

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

	movie := domain.Movie{
		Title:       input.Title,
		Description: input.Description,
		Genres:      input.Genres,
		Language:    input.Language,
		Duration:    input.Duration,
		Rating:      input.Rating,
		PosterUrl:   input.PosterUrl,
		Director:    input.Director,
		CastMembers: input.CastMembers,
		ReleaseDate: input.ReleaseDate.Time,
		Featured:    input.Featured,
	}

	err = app.movieRepo.Create(r.Context(), &movie)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toMovieDetail(&movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input api.UpdateMovieRequest

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

	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	applyMovieUpdates(movie, input)

	err = app.movieRepo.Update(r.Context(), movie)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieDetail(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func applyMovieUpdates(movie *domain.Movie, input api.UpdateMovieRequest) {
	if input.Title != nil {
		movie.Title = *input.Title
	}
	if input.Description != nil {
		movie.Description = *input.Description
	}
	if input.Genres != nil {
		movie.Genres = input.Genres
	}
	if input.Language != nil {
		movie.Language = *input.Language
	}
	if input.Duration != nil {
		movie.Duration = *input.Duration
	}
	if input.Rating != nil {
		movie.Rating = *input.Rating
	}
	if input.PosterUrl != nil {
		movie.PosterUrl = *input.PosterUrl
	}
	if input.CastMembers != nil {
		movie.CastMembers = input.CastMembers
	}
	if input.Director != nil {
		movie.Director = *input.Director
	}
	if input.ReleaseDate != nil {
		movie.ReleaseDate = input.ReleaseDate.Time
	}
	if input.Featured != nil {
		movie.Featured = *input.Featured
	}
	if input.IsActive != nil {
		movie.IsActive = *input.IsActive
	}
}

func toMovieFilters(params api.GetMoviesParams) domain.MovieFilters {
	filters := domain.MovieFilters{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		Sort:     DefaultSort,
	}

	if params.Page != nil {
		filters.Page = *params.Page
	}
	if params.PageSize != nil {
		filters.PageSize = *params.PageSize
	}
	if params.Sort != nil {
		filters.Sort = *params.Sort
	}
	if params.Term != nil {
		filters.Term = *params.Term
	}

	return filters
}

func toMovieSummaries(movies []*domain.Movie) []api.MovieSummary {
	summaries := make([]api.MovieSummary, len(movies))
	today := time.Now().Truncate(24 * time.Hour)

	for i, movie := range movies {
		summary := toMovieSummary(movie)

		if movie.ReleaseDate.After(today) {
			summary.Status = api.COMINGSOON
		} else {
			summary.Status = api.NOWSHOWING
		}

		summaries[i] = summary
	}

	return summaries
}

func toMovieSummary(movie *domain.Movie) api.MovieSummary {
	if movie == nil {
		return api.MovieSummary{}
	}

	return api.MovieSummary{
		Id:          movie.ID,
		Name:        movie.Title,
		Description: movie.Description,
		PosterUrl:   movie.PosterUrl,
		ReleaseDate: api.Date{Time: movie.ReleaseDate},
	}
}

func toMovieDetail(movie *domain.Movie) api.MovieDetailResponse {
	showtimes := make([]api.ShowtimeResponse, len(movie.Showtimes))
	for i := range movie.Showtimes {
		showtimes[i] = toShowtimeResponse(&movie.Showtimes[i])
	}

	return api.MovieDetailResponse{
		Id:          movie.ID,
		Title:       movie.Title,
		Description: movie.Description,
		Genres:      movie.Genres,
		Language:    movie.Language,
		Duration:    movie.Duration,
		Rating:      movie.Rating,
		PosterUrl:   movie.PosterUrl,
		Director:    movie.Director,
		CastMembers: movie.CastMembers,
		ReleaseDate: api.Date{Time: movie.ReleaseDate},
		Featured:    movie.Featured,
		Showtimes:   showtimes,
	}
}

func toApiMetadata(metadata *domain.Metadata) *api.Metadata {
	if metadata == nil {
		return nil
	}

	return &api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
