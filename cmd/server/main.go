package main

import (
	"log"
	"os"

	"foodbooking_back_end/internal/config"
	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/handlers/order"
	zalopayhandler "foodbooking_back_end/internal/handlers/zalopay"
	"foodbooking_back_end/internal/routes"
	"foodbooking_back_end/internal/zalopay"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	database.ConnectDatabases()
	defer database.CloseScylla()

	// Le client de passerelle est construit une fois et injecté : la
	// logique métier ne lit jamais l'environnement
	zpClient := zalopay.New(zalopay.ConfigFromEnv())
	order.Init(zpClient)
	zalopayhandler.Init(zpClient)

	r := gin.Default()
	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Serveur FoodBooking démarré sur le port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Erreur démarrage serveur: %v", err)
	}
}
