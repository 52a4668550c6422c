package order

import (
	"errors"
	"log"
	"net/http"
	"time"

	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// CancelOrder annule une commande à la demande de son propriétaire.
// Seule une commande encore pending, dans la fenêtre d'annulation, peut
// être annulée. L'annulation rend le stock réservé et libère
// l'utilisation du code promo.
func CancelOrder(c *gin.Context) {
	userID := c.GetString("user_id")
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

	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	if err := canCancel(*order, time.Now(), cancelWindow()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Le jeton de version garantit qu'une confirmation de paiement arrivée
	// entre la lecture et l'écriture fait perdre l'annulation
	if err := casStatusUpdate(ordersSession, order, models.StatusCancelled, models.PaymentFailed); err != nil {
		if errors.Is(err, errConcurrentUpdate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("❌ Erreur annulation commande %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation commande"})
		return
	}

	menusSession, err := database.GetMenusSession()
	if err == nil {
		releaseStock(menusSession, order.Items)
	} else {
		log.Printf("⚠️ Stock non restauré pour %s: %v", orderID, err)
	}

	if order.VoucherCode != "" {
		if err := ordersSession.Query(`
			DELETE FROM voucher_usage WHERE code = ? AND order_id = ?`,
			order.VoucherCode, order.OrderID).Exec(); err != nil {
			log.Printf("⚠️ Utilisation du code promo %s non libérée: %v", order.VoucherCode, err)
		}
	}

	log.Printf("🚫 Commande %s annulée par son propriétaire", orderID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Commande annulée",
		"order":   order,
	})
}
