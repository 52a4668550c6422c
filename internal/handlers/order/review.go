package order

import (
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"foodbooking_back_end/internal/cache"
	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

var (
	errItemNotFound    = errors.New("ce plat ne fait pas partie de la commande")
	errAlreadyReviewed = errors.New("ce plat a déjà été évalué sur cette commande")
	errNotDelivered    = errors.New("seule une commande livrée peut être évaluée")
)

// findReviewableItem localise la ligne évaluable d'une commande : le plat
// doit figurer dans la commande et ne pas déjà porter de note.
func findReviewableItem(o models.Order, menuID gocql.UUID) (int, error) {
	idx := -1
	for i, item := range o.Items {
		if item.MenuID == menuID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return -1, errItemNotFound
	}
	if o.Items[idx].Rating != 0 {
		return -1, errAlreadyReviewed
	}
	return idx, nil
}

// reviewErrorStatus mappe les refus d'avis sur leur statut HTTP : un
// plat absent de la commande est introuvable, le reste est un refus
// métier.
func reviewErrorStatus(err error) int {
	if errors.Is(err, errItemNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// roundStar arrondit la moyenne à une décimale.
func roundStar(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

// CreateReview attache un avis à une ligne d'une commande livrée et met
// à jour la note moyenne du plat (somme et compteur courants, pas de
// rebalayage des avis).
func CreateReview(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		OrderID string `json:"order_id" binding:"required"`
		MenuID  string `json:"menu_id" binding:"required"`
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	menuUUID, err := uuid.Parse(req.MenuID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID plat invalide"})
		return
	}
	menuID := gocql.UUID(menuUUID)

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	order, err := loadOrder(ordersSession, req.OrderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}
	if order.Status != models.StatusSuccess {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNotDelivered.Error()})
		return
	}

	idx, err := findReviewableItem(*order, menuID)
	if err != nil {
		c.JSON(reviewErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	order.Items[idx].Rating = req.Rating
	order.Items[idx].Comment = req.Comment
	if err := saveOrderItems(ordersSession, order); err != nil {
		log.Printf("❌ Erreur sauvegarde avis sur %s: %v", req.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement avis"})
		return
	}

	usersSession, err := database.GetUsersSession()
	userName := ""
	if err == nil {
		if err := usersSession.Query(`
			SELECT full_name FROM users WHERE user_id = ?`, userID).Scan(&userName); err != nil {
			log.Printf("⚠️ Nom du client introuvable: %v", err)
		}
	}

	menusSession, err := database.GetMenusSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	if err := menusSession.Query(`
		INSERT INTO menu_reviews (menu_id, created_at, order_id, user_id, user_name, rating, comment, size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		menuID, now, order.OrderID, userID, userName,
		req.Rating, req.Comment, order.Items[idx].Size).Exec(); err != nil {
		log.Printf("⚠️ Avis non indexé pour le plat %s: %v", menuID, err)
	}

	if err := applyRating(menusSession, menuID, req.Rating); err != nil {
		log.Printf("⚠️ Note moyenne non mise à jour pour %s: %v", menuID, err)
	}
	cache.InvalidateMenus()

	log.Printf("⭐ Avis %d/5 enregistré sur %s (commande %s)", req.Rating, menuID, order.OrderID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Avis enregistré",
		"order":   order,
	})
}

// applyRating incrémente la somme et le compteur de notes du plat puis
// recalcule l'étoile affichée. Le compteur sert de jeton de concurrence.
func applyRating(session *gocql.Session, menuID gocql.UUID, rating int) error {
	for attempt := 0; attempt < stockCASRetries; attempt++ {
		var sum, count int
		if err := session.Query(`
			SELECT rating_sum, rating_count FROM menus WHERE menu_id = ?`,
			menuID).Scan(&sum, &count); err != nil {
			return err
		}

		newSum := sum + rating
		newCount := count + 1

		applied, err := session.Query(`
			UPDATE menus SET rating_sum = ?, rating_count = ?, star = ?
			WHERE menu_id = ? IF rating_count = ?`,
			newSum, newCount, roundStar(newSum, newCount), menuID, count,
		).ScanCAS(&count)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return errConcurrentUpdate
}

// GetMenuReviews liste les avis publics d'un plat, les plus récents en
// premier.
func GetMenuReviews(c *gin.Context) {
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

	iter := menusSession.Query(`
		SELECT order_id, user_id, user_name, rating, comment, size, created_at
		FROM menu_reviews WHERE menu_id = ?`, gocql.UUID(menuUUID)).Iter()

	reviews := []models.MenuReview{}
	var r models.MenuReview
	r.MenuID = gocql.UUID(menuUUID)
	for iter.Scan(&r.OrderID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.Size, &r.CreatedAt) {
		reviews = append(reviews, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération avis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
