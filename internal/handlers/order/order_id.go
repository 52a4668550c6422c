package order

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
)

const displayIDRetries = 3

// generateOrderID construit l'identifiant lisible d'une commande :
// première lettre de l'email en majuscule + date AAAAMMJJ + heure HHMMSS.
// Deux emails partageant leur initiale produisent le même identifiant
// dans la même seconde — acceptable, ce n'est pas la clé de stockage.
func generateOrderID(email string, now time.Time) string {
	prefix := "X"
	if email != "" {
		prefix = strings.ToUpper(email[:1])
	}
	return prefix + now.Format("20060102150405")
}

// reserveDisplayID réserve un identifiant lisible libre par écriture
// conditionnelle : une collision dans la même seconde fait retenter sur
// l'horloge courante au lieu d'écraser la commande existante.
func reserveDisplayID(session *gocql.Session, orderKey gocql.UUID, email string) (string, error) {
	for attempt := 0; attempt < displayIDRetries; attempt++ {
		displayID := generateOrderID(email, time.Now())

		applied, err := session.Query(`
			INSERT INTO orders_by_display_id (order_id, order_key)
			VALUES (?, ?) IF NOT EXISTS`,
			displayID, orderKey,
		).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return "", err
		}
		if applied {
			return displayID, nil
		}

		// Identifiant déjà pris : on laisse passer la seconde
		time.Sleep(time.Second)
	}
	return "", errConcurrentUpdate
}
