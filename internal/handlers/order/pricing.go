package order

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"foodbooking_back_end/internal/models"
)

// Erreurs métier du calcul de prix — retournées telles quelles au client
// avec un statut 400.
var (
	errVariantUnknown   = errors.New("cette taille n'existe pas pour ce plat")
	errNoPrice          = errors.New("ce plat n'a pas de prix défini")
	errInsufficient     = errors.New("stock insuffisant")
	errVoucherInvalid   = errors.New("code promo invalide ou expiré")
	errVoucherThreshold = errors.New("montant minimum de commande non atteint pour ce code promo")
	errVoucherLimit     = errors.New("ce code promo a atteint sa limite d'utilisation")
)

// shippingTiers : barème de livraison à trois paliers, dégressif jusqu'à
// la gratuité selon le nombre total d'articles.
type shippingTiers struct {
	BaseFee         float64 // jusqu'à FirstThreshold articles
	ReducedFee      float64 // jusqu'à SecondThreshold articles
	FirstThreshold  int
	SecondThreshold int
}

var defaultShippingTiers = shippingTiers{
	BaseFee:         30000,
	ReducedFee:      15000,
	FirstThreshold:  3,
	SecondThreshold: 6,
}

// loadShippingTiers lit le barème depuis l'environnement, avec les
// valeurs par défaut historiques.
func loadShippingTiers() shippingTiers {
	t := defaultShippingTiers
	if v, err := strconv.ParseFloat(os.Getenv("SHIPPING_BASE_FEE"), 64); err == nil {
		t.BaseFee = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SHIPPING_REDUCED_FEE"), 64); err == nil {
		t.ReducedFee = v
	}
	if v, err := strconv.Atoi(os.Getenv("SHIPPING_FIRST_THRESHOLD")); err == nil {
		t.FirstThreshold = v
	}
	if v, err := strconv.Atoi(os.Getenv("SHIPPING_SECOND_THRESHOLD")); err == nil {
		t.SecondThreshold = v
	}
	return t
}

// shippingFee retourne les frais de livraison pour un nombre total
// d'articles : plein tarif, tarif réduit au-delà du premier seuil,
// gratuit au-delà du second.
func shippingFee(itemCount int, t shippingTiers) float64 {
	switch {
	case itemCount > t.SecondThreshold:
		return 0
	case itemCount > t.FirstThreshold:
		return t.ReducedFee
	default:
		return t.BaseFee
	}
}

// unitPrice résout le prix unitaire d'une ligne : prix de la taille
// demandée si elle existe, sinon prix de base du plat.
func unitPrice(menu models.Menu, size string) (float64, error) {
	if size != "" {
		price, ok := menu.Variants[size]
		if !ok {
			return 0, fmt.Errorf("%w: %s", errVariantUnknown, size)
		}
		return price, nil
	}
	if menu.Price <= 0 {
		return 0, errNoPrice
	}
	return menu.Price, nil
}

// evaluateVoucher valide le bon et calcule la réduction plafonnée.
// usedCount est le nombre de commandes non annulées référençant le code.
func evaluateVoucher(v models.Voucher, subtotal float64, usedCount int, now time.Time) (float64, error) {
	if now.Before(v.Start) || now.After(v.End) {
		return 0, errVoucherInvalid
	}
	if subtotal < v.MinPrice {
		return 0, errVoucherThreshold
	}
	if v.Limit > 0 && usedCount >= v.Limit {
		return 0, errVoucherLimit
	}

	discount := subtotal * v.DiscountPercent / 100
	if v.MaxDiscount != nil && discount > *v.MaxDiscount {
		discount = *v.MaxDiscount
	}
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}
