package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"
	"foodbooking_back_end/internal/utils"
	"foodbooking_back_end/internal/zalopay"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

var zpClient *zalopay.Client

// Init injecte le client de la passerelle de paiement au démarrage.
func Init(client *zalopay.Client) {
	zpClient = client
}

var phoneRegex = regexp.MustCompile(`^(0|\+84)[0-9]{9}$`)

// createOrderRequest est la commande typée validée en une passe — aucune
// relecture du body après le bind.
type createOrderRequest struct {
	Items []struct {
		MenuID   string `json:"menu_id" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
		Size     string `json:"size"`
	} `json:"items" binding:"required,min=1,dive"`
	VoucherCode     string `json:"voucher_code"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
	Shipping        struct {
		ReceiverName string `json:"receiver_name" binding:"required"`
		Phone        string `json:"phone" binding:"required"`
		Address      string `json:"address" binding:"required"`
	} `json:"shipping" binding:"required"`
}

// CreateOrder crée une commande complète : tarification (lignes +
// livraison + code promo), réservation de stock, persistance, puis
// initiation du paiement ZaloPay si la méthode choisie l'exige.
func CreateOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if !phoneRegex.MatchString(req.Shipping.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Numéro de téléphone invalide"})
		return
	}

	menusSession, err := database.GetMenusSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ 1. Résoudre chaque ligne : plat, taille, prix unitaire, stock
	var items []models.OrderItem
	var subtotal float64
	var itemCount int

	for _, line := range req.Items {
		menuUUID, err := uuid.Parse(line.MenuID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID plat invalide: " + line.MenuID})
			return
		}

		var menu models.Menu
		menu.ID = gocql.UUID(menuUUID)
		err = menusSession.Query(`
			SELECT name, price, variants, stock FROM menus WHERE menu_id = ?`,
			menu.ID).Scan(&menu.Name, &menu.Price, &menu.Variants, &menu.Stock)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plat introuvable: " + line.MenuID})
			return
		}

		price, err := unitPrice(menu, line.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "menu": menu.Name})
			return
		}

		// Pré-vérification lisible ; la réservation LWT refait le contrôle
		// de façon atomique
		if menu.StockTracked() && menu.Stock < line.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     errInsufficient.Error(),
				"menu":      menu.Name,
				"available": menu.Stock,
				"requested": line.Quantity,
			})
			return
		}

		items = append(items, models.OrderItem{
			MenuID:   menu.ID,
			Name:     menu.Name,
			Quantity: line.Quantity,
			Price:    price,
			Size:     line.Size,
		})
		subtotal += price * float64(line.Quantity)
		itemCount += line.Quantity
	}

	// ✅ 2. Frais de livraison par palier
	fee := shippingFee(itemCount, loadShippingTiers())

	// ✅ 3. Code promo (au plus un)
	now := time.Now()
	var discount float64
	var voucherCode string

	if req.VoucherCode != "" {
		var v models.Voucher
		err := ordersSession.Query(`
			SELECT code, name, discount_percent, max_discount, min_price, start, end, usage_limit
			FROM vouchers WHERE code = ?`, req.VoucherCode).Scan(
			&v.Code, &v.Name, &v.DiscountPercent, &v.MaxDiscount, &v.MinPrice,
			&v.Start, &v.End, &v.Limit)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errVoucherInvalid.Error()})
			return
		}

		var usedCount int
		if err := ordersSession.Query(`
			SELECT COUNT(*) FROM voucher_usage WHERE code = ?`, v.Code).Scan(&usedCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification code promo"})
			return
		}

		discount, err = evaluateVoucher(v, subtotal, usedCount, now)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		voucherCode = v.Code
	}

	total := subtotal - discount + fee

	// ✅ 4. Méthode de paiement
	pmUUID, err := uuid.Parse(req.PaymentMethodID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID méthode de paiement invalide"})
		return
	}

	var pmName, pmType string
	var pmActive bool
	err = ordersSession.Query(`
		SELECT name, type, is_active FROM payment_methods WHERE payment_method_id = ?`,
		gocql.UUID(pmUUID)).Scan(&pmName, &pmType, &pmActive)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Méthode de paiement introuvable"})
		return
	}
	if !pmActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Méthode de paiement désactivée"})
		return
	}

	// ✅ 5. Réserver le stock (décrément conditionnel + compensation)
	if err := reserveStock(menusSession, items); err != nil {
		if errors.Is(err, errInsufficient) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("❌ Erreur réservation stock: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réservation stock"})
		return
	}

	// ✅ 6. Persister la commande. L'identifiant lisible n'est pas la clé
	// de stockage : il est réservé par écriture conditionnelle, deux
	// commandes ne peuvent jamais partager la même ligne.
	orderKey := gocql.TimeUUID()
	displayID, err := reserveDisplayID(ordersSession, orderKey, email)
	if err != nil {
		log.Printf("❌ Erreur réservation identifiant de commande: %v", err)
		releaseStock(menusSession, items)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	order := models.Order{
		OrderKey:        orderKey,
		OrderID:         displayID,
		UserID:          userID,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
		Total:           total,
		ShippingFee:     fee,
		Discount:        discount,
		VoucherCode:     voucherCode,
		PaymentMethodID: gocql.UUID(pmUUID),
		Shipping: models.ShippingInfo{
			ReceiverName: req.Shipping.ReceiverName,
			Phone:        req.Shipping.Phone,
			Address:      req.Shipping.Address,
		},
		Items:     items,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	itemsJSON, _ := json.Marshal(order.Items)

	if err := ordersSession.Query(`
		INSERT INTO orders (order_key, order_id, user_id, status, payment_status, total,
			shipping_fee, discount, voucher_code, payment_method_id, app_trans_id,
			receiver_name, receiver_phone, shipping_address, items, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderKey, order.OrderID, order.UserID, order.Status, order.PaymentStatus, order.Total,
		order.ShippingFee, order.Discount, order.VoucherCode, order.PaymentMethodID, "",
		order.Shipping.ReceiverName, order.Shipping.Phone, order.Shipping.Address,
		string(itemsJSON), order.Version, order.CreatedAt, order.UpdatedAt,
	).Exec(); err != nil {
		log.Printf("❌ Erreur insertion commande: %v", err)
		// La commande n'existe pas : on rend le stock et l'identifiant
		releaseStock(menusSession, items)
		if derr := ordersSession.Query(`
			DELETE FROM orders_by_display_id WHERE order_id = ?`, order.OrderID).Exec(); derr != nil {
			log.Printf("⚠️ Identifiant %s non libéré: %v", order.OrderID, derr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	if err := ordersSession.Query(`
		INSERT INTO orders_by_user (user_id, created_at, order_key)
		VALUES (?, ?, ?)`, order.UserID, order.CreatedAt, order.OrderKey).Exec(); err != nil {
		log.Printf("⚠️ Erreur index orders_by_user: %v", err)
	}

	if order.VoucherCode != "" {
		if err := ordersSession.Query(`
			INSERT INTO voucher_usage (code, order_id, user_id, used_at)
			VALUES (?, ?, ?, ?)`, order.VoucherCode, order.OrderID, order.UserID, now).Exec(); err != nil {
			log.Printf("⚠️ Erreur enregistrement utilisation code promo: %v", err)
		}
	}

	log.Printf("🧾 Commande %s créée pour %s (%.0f)", order.OrderID, email, order.Total)

	// ✅ 7. Paiement ZaloPay si nécessaire
	if pmType == models.PaymentTypeZaloPay {
		initiatePayment(c, ordersSession, &order, email)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Commande créée avec succès",
		"order":   order,
	})
}

// initiatePayment soumet la transaction à ZaloPay et attache son
// identifiant à la commande pour corréler le callback. En cas d'échec de
// la passerelle la commande reste pending : le client peut retenter le
// paiement ou annuler dans la fenêtre.
func initiatePayment(c *gin.Context, ordersSession *gocql.Session, order *models.Order, email string) {
	appTransID := zalopay.NewAppTransID(time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := zpClient.CreateOrder(ctx, zalopay.CreateOrderRequest{
		AppTransID:  appTransID,
		AppUser:     order.UserID,
		Amount:      int64(order.Total),
		Items:       order.Items,
		Description: fmt.Sprintf("Thanh toán cho đơn hàng #%s", order.OrderID),
	})
	if err != nil {
		log.Printf("❌ Erreur passerelle ZaloPay: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    "Passerelle de paiement indisponible, réessayez plus tard",
			"order_id": order.OrderID,
		})
		return
	}
	if resp.ReturnCode != 1 {
		log.Printf("❌ ZaloPay a refusé la transaction: %d %s", resp.ReturnCode, resp.ReturnMessage)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    "Paiement refusé par la passerelle",
			"order_id": order.OrderID,
		})
		return
	}

	// Corrélation pour le callback et le polling
	order.AppTransID = appTransID
	if err := ordersSession.Query(`
		UPDATE orders SET app_trans_id = ? WHERE order_key = ?`,
		appTransID, order.OrderKey).Exec(); err != nil {
		log.Printf("❌ Erreur sauvegarde app_trans_id: %v", err)
	}
	if err := ordersSession.Query(`
		INSERT INTO orders_by_trans (app_trans_id, order_key) VALUES (?, ?)`,
		appTransID, order.OrderKey).Exec(); err != nil {
		log.Printf("⚠️ Erreur index orders_by_trans: %v", err)
	}

	qr, err := utils.GeneratePaymentQR(resp.OrderURL)
	if err != nil {
		log.Printf("⚠️ Erreur génération QR paiement: %v", err)
	}

	log.Printf("💳 Transaction ZaloPay %s créée pour la commande %s", appTransID, order.OrderID)

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Commande créée, paiement en attente",
		"order":        order,
		"order_url":    resp.OrderURL,
		"qr_code":      qr,
		"app_trans_id": appTransID,
	})
}
