package order

import (
	"errors"
	"log"
	"net/http"

	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"
	"foodbooking_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatus fait avancer une commande dans son cycle de vie
// (admin). Les états terminaux sont immuables ; quand la commande passe
// à success avec un paiement confirmé, l'email de confirmation part en
// arrière-plan.
func UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if req.Status == "" && req.PaymentStatus == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun changement demandé"})
		return
	}

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

	if err := checkStatusUpdate(*order, req.Status, req.PaymentStatus); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newStatus := order.Status
	if req.Status != "" {
		newStatus = req.Status
	}
	newPayment := order.PaymentStatus
	if req.PaymentStatus != "" {
		newPayment = req.PaymentStatus
	}

	if err := casStatusUpdate(ordersSession, order, newStatus, newPayment); err != nil {
		if errors.Is(err, errConcurrentUpdate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("❌ Erreur mise à jour statut %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour statut"})
		return
	}

	// Annulation admin : même compensation que l'annulation utilisateur
	if newStatus == models.StatusCancelled {
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
	}

	if newStatus == models.StatusSuccess && newPayment == models.PaymentSuccess {
		go sendOrderConfirmation(*order)
	}

	log.Printf("✅ Commande %s → %s / %s", orderID, newStatus, newPayment)

	c.JSON(http.StatusOK, gin.H{
		"message": "Statut mis à jour",
		"order":   order,
	})
}

// sendOrderConfirmation envoie l'email de confirmation. L'échec est
// loggé, jamais remonté : l'email n'est pas sur le chemin critique.
func sendOrderConfirmation(order models.Order) {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		log.Printf("⚠️ Email de confirmation non envoyé pour %s: %v", order.OrderID, err)
		return
	}

	var email string
	if err := usersSession.Query(`
		SELECT email FROM users WHERE user_id = ?`, order.UserID).Scan(&email); err != nil {
		log.Printf("⚠️ Email du client introuvable pour %s: %v", order.OrderID, err)
		return
	}

	html := utils.GenerateOrderConfirmationHTML(order)
	if err := utils.SendConfirmationEmail(email, "Votre commande "+order.OrderID+" est confirmée", html); err != nil {
		log.Printf("⚠️ Échec envoi email de confirmation pour %s: %v", order.OrderID, err)
		return
	}
	log.Printf("📧 Email de confirmation envoyé pour %s", order.OrderID)
}
