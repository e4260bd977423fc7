package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smallbiznis/gatepass/internal/providers/payment/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("PayPal-Request-Id") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["intent"] != "CAPTURE" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "ORDER-1",
			"status": "CREATED",
			"links": []map[string]any{
				{"href": "https://paypal.test/approve/ORDER-1", "rel": "approve"},
			},
		})
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "ORDER-1",
			"status": "COMPLETED",
			"purchase_units": []map[string]any{
				{"payments": map[string]any{"captures": []map[string]any{
					{"id": "CAP-1", "status": "COMPLETED"},
				}}},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	p, err := New(Config{BaseURL: baseURL, ClientID: "id", ClientSecret: "secret"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestCreateOrder(t *testing.T) {
	srv, _ := newTestServer(t)
	p := newTestProvider(t, srv.URL)

	order, err := p.CreateOrder(context.Background(), domain.Amount{MinorUnits: 15000, Currency: "USD"}, "2x VIP")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.OrderRef != "ORDER-1" {
		t.Fatalf("expected ORDER-1, got %s", order.OrderRef)
	}
	if order.ApprovalURL != "https://paypal.test/approve/ORDER-1" {
		t.Fatalf("unexpected approval url %s", order.ApprovalURL)
	}
}

func TestCaptureOrder(t *testing.T) {
	srv, _ := newTestServer(t)
	p := newTestProvider(t, srv.URL)

	capture, err := p.CaptureOrder(context.Background(), "ORDER-1")
	if err != nil {
		t.Fatalf("capture order: %v", err)
	}
	if capture.CaptureRef != "CAP-1" || capture.Status != "COMPLETED" {
		t.Fatalf("unexpected capture: %+v", capture)
	}
	if len(capture.RawDetails) == 0 {
		t.Fatalf("expected raw details to be retained")
	}
}

func TestTokenIsCached(t *testing.T) {
	srv, tokenCalls := newTestServer(t)
	p := newTestProvider(t, srv.URL)

	ctx := context.Background()
	if _, err := p.CreateOrder(ctx, domain.Amount{MinorUnits: 100, Currency: "USD"}, ""); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := p.CaptureOrder(ctx, "ORDER-1"); err != nil {
		t.Fatalf("capture order: %v", err)
	}
	if *tokenCalls != 1 {
		t.Fatalf("expected one token request, got %d", *tokenCalls)
	}
}

func TestNewRejectsMissingConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected config error")
	}
}
