package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cinetick/movie-booking-system/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func truncateUsersAndTokens(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(), "TRUNCATE tokens RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	_, err = db.Exec(context.Background(), "TRUNCATE users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func truncateMoviesAndBookings(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(), "TRUNCATE booking_seats, bookings, showtimes, movies RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func uniqueEmail() string {
	return fmt.Sprintf("user-%s@example.com", uuid.NewString())
}

func defaultTestUser() *domain.User {
	return &domain.User{
		FirstName: TestUserFirstName,
		LastName:  TestUserLastName,
		Email:     TestUserEmail,
		Role:      domain.RoleUser,
		Activated: true,
	}
}

func insertTestUser(t testing.TB, db *pgxpool.Pool, user *domain.User) int {
	require.NoError(t, user.Password.Set(TestUserPassword))

	var id int
	err := db.QueryRow(
		context.Background(),
		`INSERT INTO users (first_name, last_name, email, password_hash, role, activated)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password.Hash,
		user.Role,
		user.Activated,
	).Scan(&id)
	require.NoError(t, err)

	user.ID = id

	return id
}

func insertTestMovie(t testing.TB, db *pgxpool.Pool) int {
	var id int
	err := db.QueryRow(
		context.Background(),
		`INSERT INTO movies (title, description, genres, language, release_date, duration,
			poster_url, director, cast_members)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		TestMovieTitle,
		TestMovieDescription,
		TestMovieGenres,
		TestMovieLanguage,
		TestMovieReleaseDate,
		TestMovieDuration,
		TestMoviePosterUrl,
		TestMovieDirector,
		TestMovieCast,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

func insertTestShowtime(t testing.TB, db *pgxpool.Pool, movieId int, date, timeLabel string, totalSeats, availableSeats int, active bool) int {
	var id int
	err := db.QueryRow(
		context.Background(),
		`INSERT INTO showtimes (movie_id, show_date, show_time, price, total_seats, available_seats, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		movieId,
		date,
		timeLabel,
		"150.00",
		totalSeats,
		availableSeats,
		active,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

func availableSeats(t testing.TB, db *pgxpool.Pool, showtimeId int) int {
	var available int
	err := db.QueryRow(
		context.Background(),
		"SELECT available_seats FROM showtimes WHERE id = $1",
		showtimeId,
	).Scan(&available)
	require.NoError(t, err)

	return available
}

func seatClaimCount(t testing.TB, db *pgxpool.Pool, bookingId int) int {
	var count int
	err := db.QueryRow(
		context.Background(),
		"SELECT COUNT(*) FROM booking_seats WHERE booking_id = $1",
		bookingId,
	).Scan(&count)
	require.NoError(t, err)

	return count
}

// loginCookies logs an existing user in through the HTTP surface and
// returns the real session cookies scs issued.
func (app *TestApp) loginCookies(t testing.TB, email string) []*http.Cookie {
	body := strings.NewReader(fmt.Sprintf(`{"email": %q, "password": %q}`, email, TestUserPassword))

	req := httptest.NewRequest("POST", "/sessions", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	require.Equal(t, http.StatusNoContent, res.StatusCode, "login for test session failed")

	cookies := res.Cookies()
	require.NotEmpty(t, cookies, "expected a session cookie")

	return cookies
}

// authenticatedCookies resets the users table, inserts an activated user
// with the given role, and logs it in.
func (app *TestApp) authenticatedCookies(t testing.TB, email string, role domain.Role) []*http.Cookie {
	truncateUsersAndTokens(t, app.DB)

	user := defaultTestUser()
	user.Email = email
	user.Role = role
	insertTestUser(t, app.DB, user)

	return app.loginCookies(t, email)
}

func (app *TestApp) authenticatedUserCookies(t testing.TB) []*http.Cookie {
	return app.authenticatedCookies(t, TestUserEmail, domain.RoleUser)
}

func (app *TestApp) authenticatedAdminCookies(t testing.TB) []*http.Cookie {
	return app.authenticatedCookies(t, TestAdminEmail, domain.RoleAdmin)
}

// showtimeSlotFromNow returns the (date, time label) pair of the moment
// the given duration from now, matching how showtimes are stored.
func showtimeSlotFromNow(d time.Duration) (string, string) {
	at := time.Now().Add(d)
	return at.Format("2006-01-02"), at.Format("15:04")
}
