package menu

import (
	"log"
	"net/http"
	"time"

	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// CreatePaymentMethod enregistre une méthode de paiement (admin).
func CreatePaymentMethod(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Type     string `json:"type" binding:"required,oneof=zalopay cash"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	pm := models.PaymentMethod{
		ID:        gocql.TimeUUID(),
		Name:      req.Name,
		Type:      req.Type,
		IsActive:  active,
		CreatedAt: time.Now(),
	}

	if err := ordersSession.Query(`
		INSERT INTO payment_methods (payment_method_id, name, type, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		pm.ID, pm.Name, pm.Type, pm.IsActive, pm.CreatedAt,
	).Exec(); err != nil {
		log.Printf("❌ Erreur insertion méthode de paiement: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création méthode de paiement"})
		return
	}

	log.Printf("💳 Méthode de paiement créée: %s (%s)", pm.Name, pm.Type)
	c.JSON(http.StatusCreated, gin.H{"message": "Méthode de paiement créée", "payment_method": pm})
}

// GetPaymentMethods liste les méthodes de paiement actives.
func GetPaymentMethods(c *gin.Context) {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := ordersSession.Query(`
		SELECT payment_method_id, name, type, is_active, created_at
		FROM payment_methods`).Iter()

	methods := []models.PaymentMethod{}
	var pm models.PaymentMethod
	for iter.Scan(&pm.ID, &pm.Name, &pm.Type, &pm.IsActive, &pm.CreatedAt) {
		if pm.IsActive {
			methods = append(methods, pm)
		}
		pm = models.PaymentMethod{}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération méthodes de paiement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}
