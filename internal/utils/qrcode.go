package utils

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// GeneratePaymentQR encode l'URL de paiement ZaloPay en QR code PNG,
// retourné en base64 pour affichage direct côté client.
func GeneratePaymentQR(orderURL string) (string, error) {
	png, err := qrcode.Encode(orderURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
