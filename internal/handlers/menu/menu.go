// Package menu porte le catalogue : plats, codes promo et méthodes de
// paiement.
package menu

import (
	"log"
	"net/http"
	"time"

	"foodbooking_back_end/internal/cache"
	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// CreateMenu ajoute un plat au catalogue (admin). Un stock absent vaut
// -1 : plat sans suivi de stock.
func CreateMenu(c *gin.Context) {
	var req struct {
		CategoryID  string             `json:"category_id"`
		Name        string             `json:"name" binding:"required"`
		Description string             `json:"description"`
		Price       float64            `json:"price" binding:"required,gt=0"`
		Variants    map[string]float64 `json:"variants"`
		Stock       *int               `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	stock := models.StockUntracked
	if req.Stock != nil {
		if *req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Stock négatif invalide"})
			return
		}
		stock = *req.Stock
	}

	menusSession, err := database.GetMenusSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	menu := models.Menu{
		ID:          gocql.TimeUUID(),
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Variants:    req.Variants,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := menusSession.Query(`
		INSERT INTO menus (menu_id, category_id, name, description, price, variants,
			stock, star, rating_sum, rating_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?)`,
		menu.ID, menu.CategoryID, menu.Name, menu.Description, menu.Price, menu.Variants,
		menu.Stock, menu.CreatedAt, menu.UpdatedAt,
	).Exec(); err != nil {
		log.Printf("❌ Erreur insertion plat: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création plat"})
		return
	}

	cache.InvalidateMenus()
	log.Printf("🍜 Plat créé: %s", menu.Name)

	c.JSON(http.StatusCreated, gin.H{"message": "Plat créé avec succès", "menu": menu})
}

// GetMenus liste le catalogue, servi depuis Redis quand le cache est
// chaud.
func GetMenus(c *gin.Context) {
	if menus := cache.GetMenusFromCache(); menus != nil {
		c.JSON(http.StatusOK, gin.H{"menus": menus, "cached": true})
		return
	}

	menusSession, err := database.GetMenusSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := menusSession.Query(`
		SELECT menu_id, category_id, name, description, price, variants,
		       stock, star, rating_count, created_at, updated_at
		FROM menus`).Iter()

	menus := []models.Menu{}
	var m models.Menu
	for iter.Scan(&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.Price, &m.Variants,
		&m.Stock, &m.Star, &m.RatingCount, &m.CreatedAt, &m.UpdatedAt) {
		menus = append(menus, m)
		m = models.Menu{}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération catalogue"})
		return
	}

	cache.SetMenusCache(menus)
	c.JSON(http.StatusOK, gin.H{"menus": menus, "cached": false})
}

// GetMenuByID retourne un plat.
func GetMenuByID(c *gin.Context) {
	menuUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID plat invalide"})
		return
	}

	menusSession, err := database.GetMenusSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var m models.Menu
	m.ID = gocql.UUID(menuUUID)
	if err := menusSession.Query(`
		SELECT category_id, name, description, price, variants,
		       stock, star, rating_count, created_at, updated_at
		FROM menus WHERE menu_id = ?`, m.ID).Scan(
		&m.CategoryID, &m.Name, &m.Description, &m.Price, &m.Variants,
		&m.Stock, &m.Star, &m.RatingCount, &m.CreatedAt, &m.UpdatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plat introuvable"})
		return
	}

	c.JSON(http.StatusOK, m)
}
