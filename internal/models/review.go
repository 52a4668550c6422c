package models

import (
	"time"

	"github.com/gocql/gocql"
)

// MenuReview est la ligne d'index menu_reviews : un avis attaché à une
// ligne de commande, dénormalisé par plat pour la consultation publique.
type MenuReview struct {
	MenuID    gocql.UUID `json:"menu_id"`
	OrderID   string     `json:"order_id"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name"`
	Rating    int        `json:"rating"` // 1-5
	Comment   string     `json:"comment,omitempty"`
	Size      string     `json:"size,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
