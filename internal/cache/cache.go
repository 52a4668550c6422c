package cache

import (
	"context"
	"encoding/json"
	"time"

	"foodbooking_back_end/internal/database"
	"foodbooking_back_end/internal/models"
)

const (
	MenuCacheTTL = 10 * time.Minute

	menusKey = "menus:all"
)

// GetMenusFromCache retourne la liste des menus depuis Redis, ou nil si
// le cache est vide/invalide.
func GetMenusFromCache() []models.Menu {
	ctx := context.Background()

	data, err := database.Redis.Get(ctx, menusKey).Result()
	if err != nil {
		return nil
	}

	var menus []models.Menu
	if err := json.Unmarshal([]byte(data), &menus); err != nil {
		return nil
	}
	return menus
}

// SetMenusCache stocke la liste des menus dans Redis
func SetMenusCache(menus []models.Menu) {
	ctx := context.Background()

	data, err := json.Marshal(menus)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, menusKey, data, MenuCacheTTL)
}

// InvalidateMenus invalide le cache après une écriture catalogue
// (création de plat, mise à jour de note ou de stock).
func InvalidateMenus() {
	database.Redis.Del(context.Background(), menusKey)
}
