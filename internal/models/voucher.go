package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Voucher est un code promo en pourcentage, borné dans le temps et
// éventuellement plafonné en montant et en nombre d'utilisations.
type Voucher struct {
	ID              gocql.UUID `json:"id"`
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	DiscountPercent float64    `json:"discount_percent"`
	MaxDiscount     *float64   `json:"max_discount,omitempty"` // nil = pas de plafond
	MinPrice        float64    `json:"min_price"`
	Start           time.Time  `json:"start"`
	End             time.Time  `json:"end"`
	Limit           int        `json:"usage_limit"` // 0 = illimité
	CreatedAt       time.Time  `json:"created_at"`
}
