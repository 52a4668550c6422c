// Package order porte le cœur du service : tarification, réservation de
// stock, machine à états de la commande et rattachement des avis.
package order

import (
	"encoding/json"
	"net/http"

	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// resolveOrderKey traduit l'identifiant lisible en clé de stockage.
func resolveOrderKey(session *gocql.Session, displayID string) (gocql.UUID, error) {
	var key gocql.UUID
	err := session.Query(`
		SELECT order_key FROM orders_by_display_id WHERE order_id = ?`,
		displayID).Scan(&key)
	return key, err
}

// loadOrder recharge une commande depuis son identifiant lisible.
func loadOrder(session *gocql.Session, displayID string) (*models.Order, error) {
	key, err := resolveOrderKey(session, displayID)
	if err != nil {
		return nil, err
	}
	return loadOrderByKey(session, key)
}

// loadOrderByKey recharge une commande complète (instantané de lignes
// inclus) depuis sa clé de stockage.
func loadOrderByKey(session *gocql.Session, key gocql.UUID) (*models.Order, error) {
	var o models.Order
	var itemsJSON string

	err := session.Query(`
		SELECT order_id, user_id, status, payment_status, total, shipping_fee, discount,
		       voucher_code, payment_method_id, app_trans_id,
		       receiver_name, receiver_phone, shipping_address,
		       items, version, created_at, updated_at
		FROM orders WHERE order_key = ?`, key).Scan(
		&o.OrderID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Total, &o.ShippingFee, &o.Discount,
		&o.VoucherCode, &o.PaymentMethodID, &o.AppTransID,
		&o.Shipping.ReceiverName, &o.Shipping.Phone, &o.Shipping.Address,
		&itemsJSON, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	o.OrderKey = key
	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

// saveOrderItems réécrit l'instantané de lignes (après un avis).
func saveOrderItems(session *gocql.Session, o *models.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	return session.Query(`UPDATE orders SET items = ? WHERE order_key = ?`,
		string(itemsJSON), o.OrderKey).Exec()
}

// GetMyOrders récupère toutes les commandes de l'utilisateur connecté,
// les plus récentes en premier.
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := ordersSession.Query(`
		SELECT order_key FROM orders_by_user WHERE user_id = ?`, userID).Iter()

	orders := []models.Order{}
	var key gocql.UUID
	for iter.Scan(&key) {
		o, err := loadOrderByKey(ordersSession, key)
		if err != nil {
			continue
		}
		orders = append(orders, *o)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderByID récupère une commande : son propriétaire ou un admin.
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	orderID := c.Param("id")

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	order, err := loadOrder(ordersSession, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.UserID != userID && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	c.JSON(http.StatusOK, order)
}
