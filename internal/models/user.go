package models

import (
	"time"

	"github.com/gocql/gocql"
)

type User struct {
	ID        gocql.UUID `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Password  string     `json:"-"`
	Role      string     `json:"role"` // "customer" ou "admin"
	CreatedAt time.Time  `json:"created_at"`
}
