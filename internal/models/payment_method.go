package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Types de méthode de paiement supportés.
const (
	PaymentTypeZaloPay = "zalopay"
	PaymentTypeCash    = "cash"
)

type PaymentMethod struct {
	ID        gocql.UUID `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}
