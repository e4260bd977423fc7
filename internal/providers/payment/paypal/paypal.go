package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/gatepass/internal/pricing"
	"github.com/smallbiznis/gatepass/internal/providers/payment/domain"
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

type Provider struct {
	cfg    Config
	client *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" ||
		strings.TrimSpace(cfg.ClientID) == "" ||
		strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, domain.ErrInvalidConfig
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (p *Provider) Name() string { return "paypal" }

func (p *Provider) CreateOrder(ctx context.Context, amount domain.Amount, description string) (*domain.Order, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"amount": map[string]any{
					"currency_code": amount.Currency,
					"value":         pricing.FormatAmount(amount.MinorUnits),
				},
				"description": description,
			},
		},
	}

	var order createOrderResponse
	if err := p.post(ctx, token, "/v2/checkout/orders", body, &order, nil); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, fmt.Errorf("paypal order response missing id")
	}

	approval := ""
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approval = link.Href
			break
		}
	}
	if approval == "" {
		return nil, domain.ErrOrderNotApproved
	}

	return &domain.Order{OrderRef: order.ID, ApprovalURL: approval}, nil
}

func (p *Provider) CaptureOrder(ctx context.Context, orderRef string) (*domain.Capture, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	var capture captureOrderResponse
	var raw []byte
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderRef))
	if err := p.post(ctx, token, path, nil, &capture, &raw); err != nil {
		return nil, err
	}

	captureRef := ""
	for _, unit := range capture.PurchaseUnits {
		for _, c := range unit.Payments.Captures {
			captureRef = c.ID
			break
		}
	}

	return &domain.Capture{
		CaptureRef: captureRef,
		Status:     capture.Status,
		RawDetails: raw,
	}, nil
}

func (p *Provider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token request failed with status %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("paypal token response missing access_token")
	}

	p.accessToken = body.AccessToken
	// Refresh one minute early.
	p.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - time.Minute)
	return p.accessToken, nil
}

func (p *Provider) post(ctx context.Context, token, path string, body any, out any, rawOut *[]byte) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PayPal-Request-Id", uuid.NewString())

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paypal %s failed with status %d: %s", path, resp.StatusCode, truncate(raw, 256))
	}

	if rawOut != nil {
		*rawOut = raw
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

type captureOrderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}
