package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/thefortthatholds/storefront/models"
)

const stripeCheckoutSessionsEndpoint = "https://api.stripe.com/v1/checkout/sessions"

// StripeGateway creates checkout sessions against the Stripe API. The API is
// form-encoded on the way in and JSON on the way out.
type StripeGateway struct {
	secretKey string
	endpoint  string
	client    *http.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		secretKey: secretKey,
		endpoint:  stripeCheckoutSessionsEndpoint,
		client:    http.DefaultClient,
	}
}

// NewStripeGatewayWithEndpoint overrides the API endpoint, for tests.
func NewStripeGatewayWithEndpoint(secretKey, endpoint string, client *http.Client) *StripeGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &StripeGateway{secretKey: secretKey, endpoint: endpoint, client: client}
}

func (g *StripeGateway) CreateSession(ctx context.Context, item LineItem, successURL, cancelURL string, metadata map[string]string) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", item.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
	form.Set("line_items[0][price_data][product_data][name]", item.Name)
	form.Set("line_items[0][price_data][product_data][description]", item.Description)
	for key, value := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w: %v", models.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway returned status %d: %s: %w", resp.StatusCode, string(respBody), models.ErrGatewayUnavailable)
	}
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway rejected session request with status %d: %s", resp.StatusCode, string(respBody))
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode gateway session response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("gateway session response missing id or url")
	}

	return &Session{ID: session.ID, RedirectURL: session.URL}, nil
}
