package order

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"foodbooking_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindReviewableItem(t *testing.T) {
	pho := gocql.TimeUUID()
	bun := gocql.TimeUUID()

	o := models.Order{
		Status: models.StatusSuccess,
		Items: []models.OrderItem{
			{MenuID: pho, Name: "Phở bò", Quantity: 1},
			{MenuID: bun, Name: "Bún chả", Quantity: 2, Rating: 5},
		},
	}

	idx, err := findReviewableItem(o, pho)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = findReviewableItem(o, bun)
	assert.ErrorIs(t, err, errAlreadyReviewed)

	_, err = findReviewableItem(o, gocql.TimeUUID())
	assert.ErrorIs(t, err, errItemNotFound)
}

// Un plat absent de la commande est introuvable (404) ; les autres
// refus d'avis restent des erreurs métier (400).
func TestReviewErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, reviewErrorStatus(errItemNotFound))
	assert.Equal(t, http.StatusBadRequest, reviewErrorStatus(errAlreadyReviewed))
	assert.Equal(t, http.StatusBadRequest, reviewErrorStatus(errNotDelivered))
}

// La consultation des avis d'un plat est publique : une requête sans
// token atteint le handler (ici 400 sur l'id invalide, pas 401).
func TestGetMenuReviewsIsPublic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/orders/reviews/menu/:id", GetMenuReviews)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/reviews/menu/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoundStar(t *testing.T) {
	assert.Equal(t, 0.0, roundStar(0, 0))
	assert.Equal(t, 5.0, roundStar(5, 1))
	assert.Equal(t, 4.5, roundStar(9, 2))
	assert.Equal(t, 4.3, roundStar(13, 3))  // 4.333… → 4.3
	assert.Equal(t, 4.7, roundStar(14, 3))  // 4.666… → 4.7
	assert.Equal(t, 3.9, roundStar(27, 7))  // 3.857… → 3.9
}
