package order

import (
	"errors"
	"os"
	"strconv"
	"time"

	"foodbooking_back_end/internal/models"

	"github.com/gocql/gocql"
)

var (
	errInvalidTransition = errors.New("transition de statut invalide")
	errWindowExpired     = errors.New("délai d'annulation dépassé")
	errConcurrentUpdate  = errors.New("la commande a été modifiée entre-temps, réessayez")
	errUnknownStatus     = errors.New("statut inconnu")
)

// cancelWindow retourne la fenêtre d'annulation utilisateur (5 minutes
// par défaut, 0 = illimitée).
func cancelWindow() time.Duration {
	if v, err := strconv.Atoi(os.Getenv("ORDER_CANCEL_WINDOW_MIN")); err == nil {
		return time.Duration(v) * time.Minute
	}
	return 5 * time.Minute
}

// canCancel applique les règles d'annulation utilisateur : commande
// encore pending ET fenêtre d'annulation non dépassée. L'horloge de la
// fenêtre est la date de création.
func canCancel(o models.Order, now time.Time, window time.Duration) error {
	if o.Status != models.StatusPending {
		return errInvalidTransition
	}
	if window > 0 && now.Sub(o.CreatedAt) > window {
		return errWindowExpired
	}
	return nil
}

func validStatus(s string) bool {
	switch s {
	case models.StatusPending, models.StatusProcessing, models.StatusSuccess, models.StatusCancelled:
		return true
	}
	return false
}

func validPaymentStatus(s string) bool {
	switch s {
	case models.PaymentPending, models.PaymentSuccess, models.PaymentFailed:
		return true
	}
	return false
}

// checkStatusUpdate garde les transitions administrateur : les états
// terminaux (cancelled, success) ne peuvent plus changer. Les champs
// vides signifient "inchangé".
func checkStatusUpdate(o models.Order, newStatus, newPayment string) error {
	if newStatus != "" && !validStatus(newStatus) {
		return errUnknownStatus
	}
	if newPayment != "" && !validPaymentStatus(newPayment) {
		return errUnknownStatus
	}

	if newStatus != "" && newStatus != o.Status {
		if o.Status == models.StatusCancelled || o.Status == models.StatusSuccess {
			return errInvalidTransition
		}
	}
	return nil
}

// casStatusUpdate écrit le nouveau couple statut/statut de paiement avec
// un jeton de concurrence optimiste : l'écriture n'est appliquée que si
// la version lue n'a pas bougé (LWT ScyllaDB). Exactement un des
// déclencheurs concurrents (utilisateur, admin, passerelle) gagne.
func casStatusUpdate(session *gocql.Session, o *models.Order, status, payStatus string) error {
	var currentVersion int
	applied, err := session.Query(`
		UPDATE orders SET status = ?, payment_status = ?, version = ?, updated_at = ?
		WHERE order_key = ? IF version = ?`,
		status, payStatus, o.Version+1, time.Now(), o.OrderKey, o.Version,
	).ScanCAS(&currentVersion)
	if err != nil {
		return err
	}
	if !applied {
		return errConcurrentUpdate
	}

	o.Status = status
	o.PaymentStatus = payStatus
	o.Version++
	return nil
}
