package order

import (
	"fmt"
	"log"

	"foodbooking_back_end/internal/cache"
	"foodbooking_back_end/internal/models"

	"github.com/gocql/gocql"
)

const stockCASRetries = 3

// reserveStock décrémente le stock de chaque ligne de la commande.
// Décrément conditionnel (LWT) par plat : deux commandes concurrentes ne
// peuvent pas survendre un stock faible. Si une ligne échoue après que
// d'autres ont réussi, les décréments déjà appliqués sont restaurés avant
// de retourner l'erreur.
func reserveStock(session *gocql.Session, items []models.OrderItem) error {
	var reserved []models.OrderItem

	for _, item := range items {
		ok, err := decrementStock(session, item.MenuID, item.Quantity)
		if err != nil || !ok {
			// Compensation des lignes déjà réservées
			releaseStock(session, reserved)
			if err != nil {
				return err
			}
			return fmt.Errorf("%w pour %s", errInsufficient, item.Name)
		}
		reserved = append(reserved, item)
	}

	cache.InvalidateMenus()
	return nil
}

// decrementStock applique "décrémenter si suffisant" sur un plat.
// Retourne false (sans erreur) si le stock est insuffisant.
func decrementStock(session *gocql.Session, menuID gocql.UUID, quantity int) (bool, error) {
	for attempt := 0; attempt < stockCASRetries; attempt++ {
		var stock int
		if err := session.Query(`SELECT stock FROM menus WHERE menu_id = ?`, menuID).Scan(&stock); err != nil {
			return false, err
		}

		// Stock négatif = plat sans suivi de stock, rien à décrémenter
		if stock < 0 {
			return true, nil
		}
		if stock < quantity {
			return false, nil
		}

		applied, err := session.Query(`
			UPDATE menus SET stock = ? WHERE menu_id = ? IF stock = ?`,
			stock-quantity, menuID, stock,
		).ScanCAS(&stock)
		if err != nil {
			return false, err
		}
		if applied {
			return true, nil
		}
		// Quelqu'un est passé avant nous, on relit et on retente
	}
	return false, errConcurrentUpdate
}

// releaseStock restaure les quantités réservées (annulation ou
// compensation). Meilleur effort : un échec est loggé, pas propagé.
func releaseStock(session *gocql.Session, items []models.OrderItem) {
	for _, item := range items {
		if err := incrementStock(session, item.MenuID, item.Quantity); err != nil {
			log.Printf("⚠️ Échec restauration stock plat %s (+%d): %v", item.MenuID, item.Quantity, err)
		}
	}
	cache.InvalidateMenus()
}

func incrementStock(session *gocql.Session, menuID gocql.UUID, quantity int) error {
	for attempt := 0; attempt < stockCASRetries; attempt++ {
		var stock int
		if err := session.Query(`SELECT stock FROM menus WHERE menu_id = ?`, menuID).Scan(&stock); err != nil {
			return err
		}

		if stock < 0 {
			return nil // non suivi
		}

		applied, err := session.Query(`
			UPDATE menus SET stock = ? WHERE menu_id = ? IF stock = ?`,
			stock+quantity, menuID, stock,
		).ScanCAS(&stock)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return errConcurrentUpdate
}
