// Package zalopay implémente le protocole de paiement ZaloPay v2 :
// création de transaction signée HMAC-SHA256, vérification du MAC des
// callbacks et interrogation du statut d'une transaction.
package zalopay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Codes de retour attendus par le serveur ZaloPay sur le callback.
const (
	CallbackAccepted = 1  // traitement OK, ne pas renvoyer
	CallbackRetry    = 0  // erreur interne, ZaloPay renverra (3 fois max)
	CallbackRejected = -1 // MAC invalide
)

// Codes de retour de l'endpoint /query signalant un échec définitif.
const (
	QueryFailed    = 2
	QueryCancelled = 3
)

// ErrGatewayUnavailable signale un échec de transport vers ZaloPay
// (timeout inclus). L'appelant répond 502 sans retenter.
var ErrGatewayUnavailable = errors.New("passerelle de paiement indisponible")

// Config regroupe toute la configuration de la passerelle. Elle est
// construite au démarrage et injectée dans le client : aucune lecture
// d'environnement ne se fait dans la logique métier.
type Config struct {
	AppID       string
	Key1        string // signe les requêtes sortantes (create, query)
	Key2        string // vérifie les callbacks entrants
	Endpoint    string // ex: https://sb-openapi.zalopay.vn/v2
	CallbackURL string
	RedirectURL string
}

// ConfigFromEnv charge la configuration depuis l'environnement.
func ConfigFromEnv() Config {
	endpoint := os.Getenv("ZALOPAY_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://sb-openapi.zalopay.vn/v2"
	}
	return Config{
		AppID:       os.Getenv("ZALOPAY_APP_ID"),
		Key1:        os.Getenv("ZALOPAY_KEY1"),
		Key2:        os.Getenv("ZALOPAY_KEY2"),
		Endpoint:    strings.TrimRight(endpoint, "/"),
		CallbackURL: os.Getenv("ZALOPAY_CALLBACK_URL"),
		RedirectURL: os.Getenv("ZALOPAY_REDIRECT_URL"),
	}
}

type Client struct {
	cfg  Config
	http *http.Client
}

// New construit un client avec un timeout sur les appels sortants : un
// dépassement est traité comme ErrGatewayUnavailable.
func New(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Sign calcule le HMAC-SHA256 hexadécimal de data avec la clé donnée.
func Sign(data, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewAppTransID génère un identifiant de transaction préfixé par la date
// courante, format exigé par ZaloPay : YYMMDD_xxxxxx.
func NewAppTransID(now time.Time) string {
	return fmt.Sprintf("%s_%06d", now.Format("060102"), rand.Intn(1000000))
}

// CreateOrderRequest décrit la transaction à créer côté passerelle.
type CreateOrderRequest struct {
	AppTransID  string
	AppUser     string
	Amount      int64
	Items       interface{} // lignes de commande, sérialisées en JSON
	Description string
}

// CreateOrderResponse est la réponse de POST /create.
type CreateOrderResponse struct {
	ReturnCode       int    `json:"return_code"`
	ReturnMessage    string `json:"return_message"`
	SubReturnCode    int    `json:"sub_return_code"`
	SubReturnMessage string `json:"sub_return_message"`
	OrderURL         string `json:"order_url"`
	ZpTransToken     string `json:"zp_trans_token"`
}

// CreateOrder soumet une transaction signée à l'endpoint de création.
// La signature couvre, dans cet ordre et séparés par des pipes :
// app_id|app_trans_id|app_user|amount|app_time|embed_data|item (key1).
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, err
	}

	embedJSON, err := json.Marshal(map[string]string{"redirecturl": c.cfg.RedirectURL})
	if err != nil {
		return nil, err
	}

	appTime := time.Now().UnixMilli()

	data := fmt.Sprintf("%s|%s|%s|%d|%d|%s|%s",
		c.cfg.AppID, req.AppTransID, req.AppUser, req.Amount, appTime, embedJSON, itemsJSON)

	form := url.Values{}
	form.Set("app_id", c.cfg.AppID)
	form.Set("app_trans_id", req.AppTransID)
	form.Set("app_user", req.AppUser)
	form.Set("app_time", fmt.Sprintf("%d", appTime))
	form.Set("item", string(itemsJSON))
	form.Set("embed_data", string(embedJSON))
	form.Set("amount", fmt.Sprintf("%d", req.Amount))
	form.Set("description", req.Description)
	form.Set("bank_code", "")
	form.Set("callback_url", c.cfg.CallbackURL)
	form.Set("mac", Sign(data, c.cfg.Key1))

	var resp CreateOrderResponse
	if err := c.postForm(ctx, c.cfg.Endpoint+"/create", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryResponse est la réponse de POST /query.
type QueryResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	IsProcessing  bool   `json:"is_processing"`
	Amount        int64  `json:"amount"`
	ZpTransID     int64  `json:"zp_trans_id"`
}

// QueryStatus interroge le statut d'une transaction. La signature couvre
// app_id|app_trans_id|key1.
func (c *Client) QueryStatus(ctx context.Context, appTransID string) (*QueryResponse, error) {
	data := fmt.Sprintf("%s|%s|%s", c.cfg.AppID, appTransID, c.cfg.Key1)

	form := url.Values{}
	form.Set("app_id", c.cfg.AppID)
	form.Set("app_trans_id", appTransID)
	form.Set("mac", Sign(data, c.cfg.Key1))

	var resp QueryResponse
	if err := c.postForm(ctx, c.cfg.Endpoint+"/query", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyCallback compare le MAC reçu au HMAC de data calculé avec key2.
// Comparaison en temps constant.
func (c *Client) VerifyCallback(data, reqMac string) bool {
	expected := Sign(data, c.cfg.Key2)
	return hmac.Equal([]byte(expected), []byte(reqMac))
}

// CallbackData est le contenu JSON du champ data d'un callback.
type CallbackData struct {
	AppID      int64  `json:"app_id"`
	AppTransID string `json:"app_trans_id"`
	AppUser    string `json:"app_user"`
	Amount     int64  `json:"amount"`
	ZpTransID  int64  `json:"zp_trans_id"`
	Channel    int    `json:"channel"`
	EmbedData  string `json:"embed_data"`
	Item       string `json:"item"`
}

// ParseCallbackData décode le champ data d'un callback vérifié.
func ParseCallbackData(data string) (CallbackData, error) {
	var cb CallbackData
	err := json.Unmarshal([]byte(data), &cb)
	return cb, err
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: statut HTTP %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: réponse illisible: %v", ErrGatewayUnavailable, err)
	}
	return nil
}
