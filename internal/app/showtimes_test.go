package app

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/cinetick/movie-booking-system/api"
	"github.com/cinetick/movie-booking-system/internal/domain"
	"github.com/cinetick/movie-booking-system/internal/mocks"
	"github.com/cinetick/movie-booking-system/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ShowtimesTestSuite struct {
	suite.Suite
	app       *Application
	movieRepo *mocks.MockMovieRepo
}

func (s *ShowtimesTestSuite) SetupTest() {
	s.movieRepo = new(mocks.MockMovieRepo)

	s.app = newTestApplication(func(a *Application) {
		a.movieRepo = s.movieRepo
	})
}

func TestShowtimesSuite(t *testing.T) {
	suite.Run(t, new(ShowtimesTestSuite))
}

func (s *ShowtimesTestSuite) TestAddShowtime() {
	showDate := time.Now().AddDate(0, 0, 14)

	validInput := func() api.CreateShowtimeRequest {
		return api.CreateShowtimeRequest{
			Date:       api.Date{Time: showDate},
			Time:       "18:30",
			Price:      decimal.NewFromInt(120),
			TotalSeats: 80,
		}
	}

	tests := []struct {
		name           string
		input          func() api.CreateShowtimeRequest
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name: "should fail when time label is malformed",
			input: func() api.CreateShowtimeRequest {
				req := validInput()
				req.Time = "25:99"
				return req
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: validator.ErrInvalidShowtime,
		},
		{
			name: "should fail when price is not positive",
			input: func() api.CreateShowtimeRequest {
				req := validInput()
				req.Price = decimal.NewFromInt(-5)
				return req
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: validator.ErrInvalidPrice,
		},
		{
			name:  "should fail when movie does not exist",
			input: validInput,
			setupMocks: func() {
				s.movieRepo.On("AddShowtime", mock.Anything, mock.Anything).Return(domain.ErrRecordNotFound)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name:  "should reject a duplicate date and time slot",
			input: validInput,
			setupMocks: func() {
				s.movieRepo.On("AddShowtime", mock.Anything, mock.Anything).Return(domain.ErrDuplicateShowtime)
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: ErrEditConflictMsg,
		},
		{
			name:  "should create the showtime with a full seat inventory",
			input: validInput,
			setupMocks: func() {
				s.movieRepo.On("AddShowtime", mock.Anything, mock.MatchedBy(func(st *domain.Showtime) bool {
					return st.MovieID == testMovieId &&
						st.TotalSeats == 80 &&
						st.AvailableSeats == 80 &&
						st.IsActive
				})).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.movieRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/movies/10/showtimes", tt.input())
			r = withURLParams(r, map[string]string{"movieId": "10"})

			s.app.AddShowtime(w, r)

			s.Equal(tt.wantStatus, w.Code)

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *ShowtimesTestSuite) TestUpdateShowtime() {
	existing := func() *domain.Showtime {
		return &domain.Showtime{
			ID:             3,
			MovieID:        testMovieId,
			Date:           time.Now().AddDate(0, 0, 14),
			Time:           "18:30",
			Price:          decimal.NewFromInt(120),
			TotalSeats:     100,
			AvailableSeats: 40,
			IsActive:       true,
		}
	}

	tests := []struct {
		name           string
		input          api.UpdateShowtimeRequest
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
		checkResponse  func(resp api.ShowtimeResponse)
	}{
		{
			name:  "should fail when showtime does not exist",
			input: api.UpdateShowtimeRequest{Time: ptr("20:00")},
			setupMocks: func() {
				s.movieRepo.On("GetShowtimeById", mock.Anything, testMovieId, 3).
					Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name:  "should preserve booked seats when shrinking total seats",
			input: api.UpdateShowtimeRequest{TotalSeats: ptr(70)},
			setupMocks: func() {
				s.movieRepo.On("GetShowtimeById", mock.Anything, testMovieId, 3).Return(existing(), nil)
				s.movieRepo.On("UpdateShowtime", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(resp api.ShowtimeResponse) {
				// 60 seats were booked; 70 total leaves 10 available
				s.Equal(70, resp.TotalSeats)
				s.Equal(10, resp.AvailableSeats)
			},
		},
		{
			name:  "should floor available seats at zero when total drops below booked",
			input: api.UpdateShowtimeRequest{TotalSeats: ptr(50)},
			setupMocks: func() {
				s.movieRepo.On("GetShowtimeById", mock.Anything, testMovieId, 3).Return(existing(), nil)
				s.movieRepo.On("UpdateShowtime", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(resp api.ShowtimeResponse) {
				s.Equal(50, resp.TotalSeats)
				s.Equal(0, resp.AvailableSeats)
			},
		},
		{
			name:  "should grow available seats when total expands",
			input: api.UpdateShowtimeRequest{TotalSeats: ptr(150)},
			setupMocks: func() {
				s.movieRepo.On("GetShowtimeById", mock.Anything, testMovieId, 3).Return(existing(), nil)
				s.movieRepo.On("UpdateShowtime", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(resp api.ShowtimeResponse) {
				s.Equal(150, resp.TotalSeats)
				s.Equal(90, resp.AvailableSeats)
			},
		},
		{
			name:  "should reject moving the showtime onto an occupied slot",
			input: api.UpdateShowtimeRequest{Time: ptr("21:00")},
			setupMocks: func() {
				s.movieRepo.On("GetShowtimeById", mock.Anything, testMovieId, 3).Return(existing(), nil)
				s.movieRepo.On("UpdateShowtime", mock.Anything, mock.Anything).Return(domain.ErrDuplicateShowtime)
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: ErrEditConflictMsg,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.movieRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPatch, "/movies/10/showtimes/3", tt.input)
			r = withURLParams(r, map[string]string{"movieId": "10", "showtimeId": "3"})

			s.app.UpdateShowtime(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.checkResponse != nil {
				var resp api.ShowtimeResponse
				err := json.NewDecoder(w.Body).Decode(&resp)
				s.Require().NoError(err)

				tt.checkResponse(resp)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *ShowtimesTestSuite) TestDeleteShowtime() {
	tests := []struct {
		name           string
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name: "should fail when showtime does not exist",
			setupMocks: func() {
				s.movieRepo.On("DeleteShowtime", mock.Anything, testMovieId, 3).Return(domain.ErrRecordNotFound)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name: "should delete the showtime",
			setupMocks: func() {
				s.movieRepo.On("DeleteShowtime", mock.Anything, testMovieId, 3).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.movieRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodDelete, "/movies/10/showtimes/3", nil)
			r = withURLParams(r, map[string]string{"movieId": "10", "showtimeId": "3"})

			s.app.DeleteShowtime(w, r)

			s.Equal(tt.wantStatus, w.Code)

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}
