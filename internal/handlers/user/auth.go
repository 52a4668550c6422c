// Package user gère l'inscription et la connexion locales.
package user

import (
	"log"
	"net/http"
	"strings"
	"time"

	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"
	"foodbooking_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Register crée un compte local. L'email est la clé d'unicité, le mot de
// passe est haché en Argon2id.
func Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		FullName string `json:"full_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var existing gocql.UUID
	if err := usersSession.Query(`
		SELECT user_id FROM users_by_email WHERE email = ?`, email).Scan(&existing); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("❌ Erreur hachage mot de passe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	user := models.User{
		ID:        gocql.TimeUUID(),
		Email:     email,
		FullName:  req.FullName,
		Password:  hash,
		Role:      "customer",
		CreatedAt: time.Now(),
	}

	if err := usersSession.Query(`
		INSERT INTO users (user_id, email, full_name, password, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.FullName, user.Password, user.Role, user.CreatedAt,
	).Exec(); err != nil {
		log.Printf("❌ Erreur insertion utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	if err := usersSession.Query(`
		INSERT INTO users_by_email (email, user_id) VALUES (?, ?)`,
		user.Email, user.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur index users_by_email: %v", err)
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Compte créé: %s", user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Compte créé avec succès",
		"token":   token,
		"user":    user,
	})
}

// Login authentifie un compte local et retourne un JWT.
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var userID gocql.UUID
	if err := usersSession.Query(`
		SELECT user_id FROM users_by_email WHERE email = ?`, email).Scan(&userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	var user models.User
	user.ID = userID
	if err := usersSession.Query(`
		SELECT email, full_name, password, role, created_at
		FROM users WHERE user_id = ?`, userID).Scan(
		&user.Email, &user.FullName, &user.Password, &user.Role, &user.CreatedAt); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("🔑 Connexion: %s", user.Email)

	c.JSON(http.StatusOK, gin.H{
		"message": "Connexion réussie",
		"token":   token,
		"user":    user,
	})
}
