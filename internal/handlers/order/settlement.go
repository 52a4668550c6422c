package order

import (
	"errors"
	"log"

	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"

	"github.com/gocql/gocql"
)

var errTransUnknown = errors.New("transaction inconnue")

// findOrderByTrans résout une transaction de passerelle vers sa commande.
func findOrderByTrans(session *gocql.Session, appTransID string) (*models.Order, error) {
	var orderKey gocql.UUID
	if err := session.Query(`
		SELECT order_key FROM orders_by_trans WHERE app_trans_id = ?`,
		appTransID).Scan(&orderKey); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, errTransUnknown
		}
		return nil, err
	}
	return loadOrderByKey(session, orderKey)
}

// SettlePayment marque la commande liée à la transaction comme payée et
// la fait passer en préparation. Idempotent : un callback rejoué sur une
// commande déjà réglée réussit sans réécrire. Une commande annulée entre
// temps n'est pas relancée.
func SettlePayment(appTransID string) error {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	order, err := findOrderByTrans(ordersSession, appTransID)
	if err != nil {
		return err
	}

	if order.PaymentStatus == models.PaymentSuccess {
		return nil
	}
	if order.Status == models.StatusCancelled {
		return nil
	}

	return casStatusUpdate(ordersSession, order, models.StatusProcessing, models.PaymentSuccess)
}

// FailPayment annule la commande liée à une transaction définitivement
// échouée côté passerelle : stock rendu, code promo libéré. Sans effet
// si la commande est déjà close.
func FailPayment(appTransID string) error {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	order, err := findOrderByTrans(ordersSession, appTransID)
	if err != nil {
		return err
	}

	if order.Status == models.StatusCancelled || order.PaymentStatus == models.PaymentSuccess {
		return nil
	}

	if err := casStatusUpdate(ordersSession, order, models.StatusCancelled, models.PaymentFailed); err != nil {
		return err
	}

	if menusSession, err := database.GetMenusSession(); err == nil {
		releaseStock(menusSession, order.Items)
	}
	if order.VoucherCode != "" {
		if err := ordersSession.Query(`
			DELETE FROM voucher_usage WHERE code = ? AND order_id = ?`,
			order.VoucherCode, order.OrderID).Exec(); err != nil {
			log.Printf("⚠️ Utilisation du code promo %s non libérée: %v", order.VoucherCode, err)
		}
	}

	log.Printf("🚫 Commande %s annulée: paiement échoué côté passerelle", order.OrderID)
	return nil
}
