// Package paypal talks to the PayPal REST API and exposes it as the checkout payment SDK.
package paypal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
)

const (
	tokenPath  = "/v1/oauth2/token"
	ordersPath = "/v2/checkout/orders"

	// tokenSkew renews the access token this long before PayPal expires it.
	tokenSkew = time.Minute
)

// ClientConfig configures the REST client.
type ClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client is a minimal PayPal Orders v2 client.
type Client struct {
	http     *resty.Client
	clientID string
	secret   string
	log      zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

// NewClient creates a PayPal client.
func NewClient(cfg ClientConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", "ColorMuse-Books/1.0").
		SetHeader("Accept", "application/json")

	return &Client{
		http:     client,
		clientID: cfg.ClientID,
		secret:   cfg.ClientSecret,
		log:      log.With().Str("component", "paypal_client").Logger(),
		now:      time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount      amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type payerName struct {
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

type payer struct {
	Name         payerName `json:"name"`
	EmailAddress string    `json:"email_address"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  payer  `json:"payer"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id"`
}

// CreateOrder creates a CAPTURE order for the request's purchase units.
func (c *Client) CreateOrder(ctx context.Context, req checkout.OrderRequest) (*checkout.ProviderOrder, error) {
	body := createOrderRequest{Intent: req.Intent}
	if body.Intent == "" {
		body.Intent = checkout.IntentCapture
	}
	for _, unit := range req.PurchaseUnits {
		body.PurchaseUnits = append(body.PurchaseUnits, purchaseUnit{
			Amount:      amount{CurrencyCode: unit.Currency, Value: unit.Amount.StringFixed(2)},
			Description: unit.Description,
		})
	}

	var result orderResponse
	headers := map[string]string{}
	if req.RequestID != "" {
		headers["PayPal-Request-Id"] = req.RequestID
	}
	if err := c.do(ctx, http.MethodPost, ordersPath, headers, body, &result); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &checkout.ProviderOrder{ID: result.ID, Status: result.Status}, nil
}

// CaptureOrder captures an approved order.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*checkout.CaptureDetails, error) {
	var result orderResponse
	path := fmt.Sprintf("%s/%s/capture", ordersPath, url.PathEscape(orderID))
	if err := c.do(ctx, http.MethodPost, path, nil, struct{}{}, &result); err != nil {
		return nil, fmt.Errorf("capture order %s: %w", orderID, err)
	}
	return &checkout.CaptureDetails{
		OrderID: result.ID,
		Status:  result.Status,
		Payer: checkout.Payer{
			GivenName: result.Payer.Name.GivenName,
			Surname:   result.Payer.Name.Surname,
			Email:     result.Payer.EmailAddress,
		},
	}, nil
}

// GetOrder fetches an order, typically to check that it is COMPLETED.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*checkout.ProviderOrder, error) {
	var result orderResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%s", ordersPath, url.PathEscape(orderID)), nil, nil, &result); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return &checkout.ProviderOrder{ID: result.ID, Status: result.Status}, nil
}

// do sends an authorized request, renewing the token once on 401.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, result any) error {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}

		req := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeaders(headers).
			SetResult(result).
			SetError(&apiError{})
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return fmt.Errorf("paypal request failed: %w", err)
		}
		if resp.StatusCode() == http.StatusUnauthorized && attempt == 0 {
			c.log.Debug().Msg("paypal token rejected, renewing")
			c.resetToken()
			continue
		}
		if resp.IsError() {
			if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Name != "" {
				return fmt.Errorf("paypal API error (status %d): %s: %s (debug_id %s)", resp.StatusCode(), apiErr.Name, apiErr.Message, apiErr.DebugID)
			}
			return fmt.Errorf("paypal API error (status %d): %s", resp.StatusCode(), resp.String())
		}
		return nil
	}
	return fmt.Errorf("paypal rejected renewed access token")
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var result tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&result).
		Post(tokenPath)
	if err != nil {
		return "", fmt.Errorf("failed to obtain paypal access token: %w", err)
	}
	if resp.IsError() || result.AccessToken == "" {
		return "", fmt.Errorf("paypal token endpoint error (status %d): %s", resp.StatusCode(), resp.String())
	}

	lifetime := time.Duration(result.ExpiresIn) * time.Second
	if lifetime > tokenSkew {
		lifetime -= tokenSkew
	}
	c.token = result.AccessToken
	c.tokenExpiry = c.now().Add(lifetime)
	return c.token, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.tokenExpiry = time.Time{}
}
