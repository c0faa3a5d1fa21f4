package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleEmployer UserRole = "employer"
	RoleWorker   UserRole = "worker"
)

// Valid reports whether the role is one of the two enumerated values.
func (r UserRole) Valid() bool {
	return r == RoleEmployer || r == RoleWorker
}

// User is the immutable profile snapshot returned by the server alongside a
// token pair. It is cached with the session and only refreshed by re-login.
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Role        UserRole  `json:"role"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RatingAvg   float64   `json:"rating_avg"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
}
