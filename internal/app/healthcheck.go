package app

import (
	"net/http"

	"github.com/cinetick/movie-booking-system/api"
	"github.com/cinetick/movie-booking-system/internal/vcs"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthcheckResponse{
		Status: "available",
		SystemInfo: api.SystemInfo{
			Version:     vcs.Version(),
			Environment: app.config.Env,
		},
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
