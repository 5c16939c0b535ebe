package domain

import "errors"

var (
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrDuplicateShowtime    = errors.New("a showtime already exists for this date and time")
	ErrSeatsAlreadyBooked   = errors.New("seat(s) are already booked for this showtime")
	ErrNotEnoughSeats       = errors.New("not enough available seats for this showtime")
	ErrDuplicateBookingCode = errors.New("booking code already in use")
)
