package routes

import (
	"os"
	"strings"
	"time"

	"foodbooking_back_end/internal/handlers/menu"
	"foodbooking_back_end/internal/handlers/order"
	"foodbooking_back_end/internal/handlers/user"
	zalopayhandler "foodbooking_back_end/internal/handlers/zalopay"
	"foodbooking_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes branche toutes les routes de l'API.
func RegisterRoutes(r *gin.Engine) {
	allowedOrigins := []string{"http://localhost:3000"}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// 🔑 Authentification
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), user.Register)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
	}

	// 🍜 Catalogue (lecture publique, écriture admin)
	menus := api.Group("/menus")
	{
		menus.GET("", menu.GetMenus)
		menus.GET("/:id", menu.GetMenuByID)
		menus.POST("", middleware.AuthRequired(), middleware.RequireAdmin, menu.CreateMenu)
	}

	// 🎟️ Codes promo
	vouchers := api.Group("/vouchers")
	{
		vouchers.GET("", menu.GetVouchers)
		vouchers.POST("", middleware.AuthRequired(), middleware.RequireAdmin, menu.CreateVoucher)
	}

	// 💳 Méthodes de paiement
	payments := api.Group("/payment-methods")
	{
		payments.GET("", menu.GetPaymentMethods)
		payments.POST("", middleware.AuthRequired(), middleware.RequireAdmin, menu.CreatePaymentMethod)
	}

	// 🧾 Commandes
	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired())
	{
		orders.POST("", middleware.OrderRateLimit(), order.CreateOrder)
		orders.GET("", order.GetMyOrders)
		orders.GET("/:id", order.GetOrderByID)
		orders.POST("/:id/cancel", order.CancelOrder)
		orders.PATCH("/:id/status", middleware.RequireAdmin, order.UpdateOrderStatus)
		orders.POST("/review", order.CreateReview)
	}

	// ⭐ Avis publics d'un plat : lecture sans authentification
	api.GET("/orders/reviews/menu/:id", order.GetMenuReviews)

	// 🔌 Passerelle ZaloPay
	zp := api.Group("/zalopay")
	{
		// Le callback s'authentifie par son MAC, pas par JWT
		zp.POST("/callback", zalopayhandler.Callback)
		zp.GET("/status/:app_trans_id", middleware.AuthRequired(), zalopayhandler.CheckStatus)
	}
}
