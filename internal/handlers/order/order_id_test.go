package order

import (
	"encoding/json"
	"testing"
	"time"

	"foodbooking_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderID(t *testing.T) {
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)

	assert.Equal(t, "A20250314150926", generateOrderID("alice@example.com", at))
	assert.Equal(t, "Z20250314150926", generateOrderID("zoe@example.com", at))

	// Première lettre toujours en majuscule
	assert.Equal(t, "B20250314150926", generateOrderID("Bob@example.com", at))
}

func TestGenerateOrderIDEmptyEmail(t *testing.T) {
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	assert.Equal(t, "X20250314150926", generateOrderID("", at))
}

// Deux emails partageant leur initiale produisent le même identifiant
// lisible dans la même seconde : c'est pour cela qu'il est réservé par
// écriture conditionnelle et n'est jamais la clé de stockage.
func TestGenerateOrderIDSharedInitialSameSecond(t *testing.T) {
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)

	assert.Equal(t, generateOrderID("alice@example.com", at), generateOrderID("anna@example.com", at))
}

func TestOrderStorageKeyNotExposed(t *testing.T) {
	o := models.Order{
		OrderKey: gocql.TimeUUID(),
		OrderID:  "A20250314150926",
	}

	payload, err := json.Marshal(o)
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "order_key")
	assert.Contains(t, string(payload), `"order_id":"A20250314150926"`)
}
