package models

import (
	"time"

	"github.com/gocql/gocql"
)

// StockUntracked marque un plat sans suivi de stock : toujours
// disponible, jamais décrémenté.
const StockUntracked = -1

type Menu struct {
	ID          gocql.UUID         `json:"id"`
	CategoryID  string             `json:"category_id,omitempty"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Price       float64            `json:"price"`
	Variants    map[string]float64 `json:"variants,omitempty"` // taille → prix
	Stock       int                `json:"stock"`
	Star        float64            `json:"star"` // moyenne arrondie à 1 décimale
	RatingSum   int                `json:"-"`
	RatingCount int                `json:"rating_count"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// StockTracked indique si le plat a un stock suivi.
func (m Menu) StockTracked() bool {
	return m.Stock >= 0
}
