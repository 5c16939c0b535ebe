package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	ErrRequired        = "is required"
	ErrEmail           = "must be a valid email address"
	ErrMinValue        = "must be at least %s"
	ErrMaxValue        = "must be at most %s"
	ErrMinLength       = "must be at least %s characters long"
	ErrMaxLength       = "must be at most %s characters long"
	ErrAlphaOnly       = "must contain only letters"
	ErrInvalidPassword = "must be at least 8 characters long and include at least one uppercase letter, one lowercase letter, " +
		"one number, and one special character (!@#$%^&*)."
	ErrInvalidSeat     = "must be a seat label like A1 or AB12"
	ErrInvalidShowtime = "must be a time in 24-hour HH:MM format"
	ErrInvalidPrice    = "must be a positive amount"
	ErrInvalid         = "is invalid"
)

var (
	hasSpecialRgx = regexp.MustCompile(`[!@#$%^&*]`)
	seatLabelRgx  = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,3}$`)
	showtimeRgx   = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("password", validatePassword)
	validator.RegisterValidation("seat", validateSeatLabel)
	validator.RegisterValidation("showtime", validateShowtimeLabel)
	validator.RegisterValidation("price", validatePrice)

	return validator
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 || len(password) > 25 {
		return false
	}

	containsUpper, containsLower, containsDigit, containsSpecial := false, false, false, false

	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			containsUpper = true
		case unicode.IsLower(ch):
			containsLower = true
		case unicode.IsDigit(ch):
			containsDigit = true
		case hasSpecialRgx.MatchString(string(ch)):
			containsSpecial = true
		}
	}

	return containsUpper && containsLower && containsDigit && containsSpecial
}

func validateSeatLabel(fl validator.FieldLevel) bool {
	return seatLabelRgx.MatchString(fl.Field().String())
}

func validateShowtimeLabel(fl validator.FieldLevel) bool {
	return showtimeRgx.MatchString(fl.Field().String())
}

func validatePrice(fl validator.FieldLevel) bool {
	price, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}

	return price.IsPositive()
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrEmail
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf(ErrMinLength, err.Param())
		}
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf(ErrMaxLength, err.Param())
		}
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "alpha":
		return ErrAlphaOnly
	case "password":
		return ErrInvalidPassword
	case "seat":
		return ErrInvalidSeat
	case "showtime":
		return ErrInvalidShowtime
	case "price":
		return ErrInvalidPrice
	default:
		return ErrInvalid
	}
}
