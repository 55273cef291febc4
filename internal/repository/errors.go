// Package repository holds the MySQL implementations of the persistence
// stores and the sentinel errors shared by every store implementation.
// Services translate these sentinels into apperr kinds.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrAlreadyLiked    = errors.New("movie already liked")
	ErrNotLiked        = errors.New("movie not in favourites")
	ErrTokenInvalid    = errors.New("refresh token invalid")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrSlugExists      = errors.New("slug already exists")
	ErrAlreadyReviewed = errors.New("movie already reviewed")
	ErrShowNotFound    = errors.New("show not found")
	ErrTheatreNotFound = errors.New("theatre not found")
	ErrCineastNotFound = errors.New("cineast not found")
	ErrBookingNotFound = errors.New("booking not found")
	// ErrSoldOut means the requested seats exceed the show's remaining inventory.
	ErrSoldOut = errors.New("not enough seats available")
	// ErrSeatsBelowBooked rejects shrinking a show below its booked seats.
	ErrSeatsBelowBooked = errors.New("total seats below seats already booked")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrConflict is returned when a delete cannot proceed because dependent
	// rows still reference the record.
	ErrConflict = errors.New("conflict")
)

// MySQL server error numbers the stores react to.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

func isMySQLErr(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}
