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

// CreateVoucher crée un code promo (admin). Le code est la clé : deux
// campagnes ne peuvent pas partager un code.
func CreateVoucher(c *gin.Context) {
	var req struct {
		Code            string   `json:"code" binding:"required"`
		Name            string   `json:"name" binding:"required"`
		DiscountPercent float64  `json:"discount_percent" binding:"required,gt=0,lte=100"`
		MaxDiscount     *float64 `json:"max_discount"`
		MinPrice        float64  `json:"min_price"`
		Start           string   `json:"start" binding:"required"`
		End             string   `json:"end" binding:"required"`
		Limit           int      `json:"usage_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date de début invalide (RFC3339 attendu)"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date de fin invalide (RFC3339 attendu)"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fin doit être après le début"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	v := models.Voucher{
		ID:              gocql.TimeUUID(),
		Code:            req.Code,
		Name:            req.Name,
		DiscountPercent: req.DiscountPercent,
		MaxDiscount:     req.MaxDiscount,
		MinPrice:        req.MinPrice,
		Start:           start,
		End:             end,
		Limit:           req.Limit,
		CreatedAt:       time.Now(),
	}

	// INSERT conditionnel : le code est unique
	applied, err := ordersSession.Query(`
		INSERT INTO vouchers (code, voucher_id, name, discount_percent, max_discount,
			min_price, start, end, usage_limit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		v.Code, v.ID, v.Name, v.DiscountPercent, v.MaxDiscount,
		v.MinPrice, v.Start, v.End, v.Limit, v.CreatedAt,
	).MapScanCAS(map[string]interface{}{})
	if err != nil {
		log.Printf("❌ Erreur insertion code promo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création code promo"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce code promo existe déjà"})
		return
	}

	log.Printf("🎟️ Code promo créé: %s (%.0f%%)", v.Code, v.DiscountPercent)
	c.JSON(http.StatusCreated, gin.H{"message": "Code promo créé avec succès", "voucher": v})
}

// GetVouchers liste les codes promo actuellement actifs.
func GetVouchers(c *gin.Context) {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := ordersSession.Query(`
		SELECT code, voucher_id, name, discount_percent, max_discount,
		       min_price, start, end, usage_limit, created_at
		FROM vouchers`).Iter()

	now := time.Now()
	vouchers := []models.Voucher{}
	var v models.Voucher
	for iter.Scan(&v.Code, &v.ID, &v.Name, &v.DiscountPercent, &v.MaxDiscount,
		&v.MinPrice, &v.Start, &v.End, &v.Limit, &v.CreatedAt) {
		if now.Before(v.Start) || now.After(v.End) {
			v = models.Voucher{}
			continue
		}
		vouchers = append(vouchers, v)
		v = models.Voucher{}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération codes promo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vouchers": vouchers})
}
