package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de commande
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusCancelled  = "cancelled"
)

// Statuts de paiement
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

type ShippingInfo struct {
	ReceiverName string `json:"receiver_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// OrderItem est un instantané figé au moment de la commande : le prix
// unitaire ne doit jamais être recalculé depuis le menu.
type OrderItem struct {
	MenuID   gocql.UUID `json:"menu_id"`
	Name     string     `json:"name"`
	Quantity int        `json:"quantity"`
	Price    float64    `json:"price"`
	Size     string     `json:"size,omitempty"`
	Rating   int        `json:"rating,omitempty"` // 0 = pas encore noté
	Comment  string     `json:"comment,omitempty"`
}

type Order struct {
	// OrderKey est la clé de stockage interne. OrderID est l'identifiant
	// lisible exposé aux clients : il n'est pas la clé primaire, une
	// collision d'affichage ne peut pas écraser une commande.
	OrderKey        gocql.UUID   `json:"-"`
	OrderID         string       `json:"order_id"`
	UserID          string       `json:"user_id"`
	Status          string       `json:"status"`
	PaymentStatus   string       `json:"payment_status"`
	Total           float64      `json:"total"`
	ShippingFee     float64      `json:"shipping_fee"`
	Discount        float64      `json:"discount"`
	VoucherCode     string       `json:"voucher_code,omitempty"`
	PaymentMethodID gocql.UUID   `json:"payment_method_id"`
	AppTransID      string       `json:"app_trans_id,omitempty"`
	Shipping        ShippingInfo `json:"shipping"`
	Items           []OrderItem  `json:"items"`
	Version         int          `json:"-"` // jeton de concurrence optimiste
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Subtotal recalcule le sous-total depuis les instantanés de lignes.
func (o Order) Subtotal() float64 {
	var subtotal float64
	for _, item := range o.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return subtotal
}
