package integration_test

import (
	"time"
)

const (
	// User related constants
	TestUserId        = 1
	TestUserFirstName = "John"
	TestUserLastName  = "Doe"
	TestUserEmail     = "test@example.com"
	TestUserPassword  = "Test123!@#"

	TestAdminEmail = "admin@example.com"

	// Token related constants
	TestToken      = "r8zEhnVzNTZDf8WypfYBTU_FkFUm9jXnTmMrK-WuFQ8"
	TestTokenScope = "user_activation"

	// Movie related constants
	TestMovieTitle       = "Test Movie"
	TestMovieDescription = "A test movie description."
	TestMovieLanguage    = "English"
	TestMovieDuration    = 120
	TestMoviePosterUrl   = "https://example.com/poster.jpg"
	TestMovieDirector    = "Jane Doe"
)

var (
	TestMovieGenres      = []string{"Action", "Drama"}
	TestMovieCast        = []string{"Actor One", "Actor Two"}
	TestMovieReleaseDate = time.Now().Truncate(24 * time.Hour).Format("2006-01-02")

	// a calendar day comfortably outside the cancellation window
	TestShowDate = time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	TestShowTime = "18:30"
)
