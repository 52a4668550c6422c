// Package zalopayhandler expose les endpoints HTTP de la passerelle :
// callback serveur-à-serveur et vérification de statut à la demande.
package zalopayhandler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"foodbooking_back_end/internal/handlers/order"
	"foodbooking_back_end/internal/zalopay"

	"github.com/gin-gonic/gin"
)

var zpClient *zalopay.Client

// Init injecte le client de la passerelle au démarrage.
func Init(client *zalopay.Client) {
	zpClient = client
}

// Callback reçoit la notification serveur-à-serveur de ZaloPay après un
// paiement. Le MAC est vérifié avec key2 avant tout traitement. La
// réponse est TOUJOURS un HTTP 200 : le résultat passe par return_code
// (1 = traité, 0 = retenter, -1 = MAC invalide).
func Callback(c *gin.Context) {
	var req struct {
		Data string `json:"data" binding:"required"`
		Mac  string `json:"mac" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"return_code":    zalopay.CallbackRejected,
			"return_message": "invalid payload",
		})
		return
	}

	if !zpClient.VerifyCallback(req.Data, req.Mac) {
		log.Printf("❌ Callback ZaloPay rejeté: MAC invalide")
		c.JSON(http.StatusOK, gin.H{
			"return_code":    zalopay.CallbackRejected,
			"return_message": "mac not equal",
		})
		return
	}

	cb, err := zalopay.ParseCallbackData(req.Data)
	if err != nil {
		log.Printf("❌ Callback ZaloPay illisible: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"return_code":    zalopay.CallbackRetry,
			"return_message": "unreadable data",
		})
		return
	}

	if err := order.SettlePayment(cb.AppTransID); err != nil {
		log.Printf("❌ Erreur traitement callback %s: %v", cb.AppTransID, err)
		c.JSON(http.StatusOK, gin.H{
			"return_code":    zalopay.CallbackRetry,
			"return_message": err.Error(),
		})
		return
	}

	log.Printf("💳 Paiement confirmé pour la transaction %s", cb.AppTransID)
	c.JSON(http.StatusOK, gin.H{
		"return_code":    zalopay.CallbackAccepted,
		"return_message": "success",
	})
}

// CheckStatus interroge ZaloPay sur l'état d'une transaction et
// synchronise la commande quand la passerelle signale un échec définitif.
func CheckStatus(c *gin.Context) {
	appTransID := c.Param("app_trans_id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := zpClient.QueryStatus(ctx, appTransID)
	if err != nil {
		if errors.Is(err, zalopay.ErrGatewayUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interrogation passerelle"})
		return
	}

	// Échec définitif côté passerelle : la commande est close
	if resp.ReturnCode == zalopay.QueryFailed || resp.ReturnCode == zalopay.QueryCancelled {
		if err := order.FailPayment(appTransID); err != nil {
			log.Printf("⚠️ Commande non synchronisée après échec ZaloPay %s: %v", appTransID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"return_code":    resp.ReturnCode,
		"return_message": resp.ReturnMessage,
		"is_processing":  resp.IsProcessing,
		"amount":         resp.Amount,
		"zp_trans_id":    resp.ZpTransID,
	})
}
