package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/gatepass/internal/config"
	eventdomain "github.com/smallbiznis/gatepass/internal/event/domain"
	"github.com/smallbiznis/gatepass/internal/observability/metrics"
	purchasedomain "github.com/smallbiznis/gatepass/internal/purchase/domain"
	reportingdomain "github.com/smallbiznis/gatepass/internal/reporting/domain"
	"github.com/smallbiznis/gatepass/internal/server"
	txdomain "github.com/smallbiznis/gatepass/internal/transaction/domain"
	"go.uber.org/zap"
)

type stubEventService struct {
	create func(ctx context.Context, req eventdomain.CreateRequest) (*eventdomain.Response, error)
	get    func(ctx context.Context, id string) (*eventdomain.Response, error)
}

func (s *stubEventService) Create(ctx context.Context, req eventdomain.CreateRequest) (*eventdomain.Response, error) {
	return s.create(ctx, req)
}

func (s *stubEventService) Get(ctx context.Context, id string) (*eventdomain.Response, error) {
	return s.get(ctx, id)
}

func (s *stubEventService) ReplacePricing(ctx context.Context, id string, raw map[string]any) (*eventdomain.Response, error) {
	return nil, eventdomain.ErrNotFound
}

type stubPurchaseService struct {
	create func(ctx context.Context, req purchasedomain.CreateRequest) (*purchasedomain.CreateResponse, error)
}

func (s *stubPurchaseService) Create(ctx context.Context, req purchasedomain.CreateRequest) (*purchasedomain.CreateResponse, error) {
	return s.create(ctx, req)
}

func (s *stubPurchaseService) Complete(ctx context.Context, orderRef string) (*purchasedomain.SettleResult, error) {
	return &purchasedomain.SettleResult{Processed: true}, nil
}

func (s *stubPurchaseService) Cancel(ctx context.Context, orderRef string) (*purchasedomain.SettleResult, error) {
	return &purchasedomain.SettleResult{Processed: true}, nil
}

type stubTransactionService struct{}

func (stubTransactionService) Get(ctx context.Context, publicID, buyerID string) (*txdomain.Transaction, error) {
	return nil, txdomain.ErrNotFound
}

func (stubTransactionService) Receipt(ctx context.Context, publicID, buyerID string) (io.Reader, error) {
	return nil, txdomain.ErrNotFound
}

type stubReportingService struct{}

func (stubReportingService) History(ctx context.Context, req reportingdomain.HistoryRequest) (*reportingdomain.HistoryResponse, error) {
	return &reportingdomain.HistoryResponse{Items: []reportingdomain.HistoryItem{}}, nil
}

func (stubReportingService) Summary(ctx context.Context, buyerID string) (*reportingdomain.Summary, error) {
	return &reportingdomain.Summary{BuyerID: buyerID}, nil
}

func (stubReportingService) EventSales(ctx context.Context, eventID string) (*reportingdomain.EventSales, error) {
	return &reportingdomain.EventSales{EventID: eventID}, nil
}

type stubAuditService struct{}

func (stubAuditService) AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	return nil
}

func newTestServer(t *testing.T, purchaseSvc purchasedomain.Service) http.Handler {
	t.Helper()

	cfg := config.Config{Environment: "test", ListenAddr: ":0"}
	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	engine := server.NewEngine(cfg, log, metrics.New(reg), reg)

	server.NewServer(server.ServerParams{
		Gin: engine,
		Cfg: cfg,
		Log: log,
		EventSvc: &stubEventService{
			create: func(ctx context.Context, req eventdomain.CreateRequest) (*eventdomain.Response, error) {
				return &eventdomain.Response{Title: req.Title}, nil
			},
			get: func(ctx context.Context, id string) (*eventdomain.Response, error) {
				return nil, eventdomain.ErrNotFound
			},
		},
		PurchaseSvc:  purchaseSvc,
		TxSvc:        stubTransactionService{},
		ReportingSvc: stubReportingService{},
		AuditSvc:     stubAuditService{},
	})
	return engine
}

func TestCreatePurchaseRequiresBuyerHeader(t *testing.T) {
	handler := newTestServer(t, &stubPurchaseService{
		create: func(ctx context.Context, req purchasedomain.CreateRequest) (*purchasedomain.CreateResponse, error) {
			t.Fatalf("service must not be called without a buyer")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/purchases",
		strings.NewReader(`{"event_id":"1","ticket_type_code":"vip","quantity":1,"client_price":150.00}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreatePurchaseParsesClientPrice(t *testing.T) {
	var captured purchasedomain.CreateRequest
	handler := newTestServer(t, &stubPurchaseService{
		create: func(ctx context.Context, req purchasedomain.CreateRequest) (*purchasedomain.CreateResponse, error) {
			captured = req
			return &purchasedomain.CreateResponse{
				TransactionID: "txn_1",
				OrderRef:      "ORDER-1",
				Status:        txdomain.StatusPending,
			}, nil
		},
	})

	// Legacy clients send the price as a decimal string.
	req := httptest.NewRequest(http.MethodPost, "/api/purchases",
		strings.NewReader(`{"event_id":"1","ticket_type_code":"vip","quantity":2,"client_price":"150.00"}`))
	req.Header.Set(server.HeaderBuyer, "buyer-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.BuyerID != "buyer-1" || captured.ClientPriceMinor != 15000 || captured.Quantity != 2 {
		t.Fatalf("unexpected request forwarded: %+v", captured)
	}
}

func TestDomainErrorsMapToStatusCodes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		errType string
	}{
		{"price mismatch", purchasedomain.ErrPriceMismatch, http.StatusConflict, "conflict"},
		{"event missing", eventdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"provider down", purchasedomain.ErrProvider, http.StatusBadGateway, "provider_error"},
		{"bad request", purchasedomain.ErrInvalidRequest, http.StatusBadRequest, "validation_error"},
		{"inconsistent state", purchasedomain.ErrConsistency, http.StatusConflict, "consistency_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestServer(t, &stubPurchaseService{
				create: func(ctx context.Context, req purchasedomain.CreateRequest) (*purchasedomain.CreateResponse, error) {
					return nil, tc.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/purchases",
				strings.NewReader(`{"event_id":"1","ticket_type_code":"vip","quantity":1,"client_price":150}`))
			req.Header.Set(server.HeaderBuyer, "buyer-1")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"type":"`+tc.errType+`"`) {
				t.Fatalf("expected error type %s, got %s", tc.errType, rec.Body.String())
			}
		})
	}
}

func TestCancelPurchaseAcceptsEmptyBody(t *testing.T) {
	handler := newTestServer(t, &stubPurchaseService{})

	// Abandoned approval flows redirect back without an order reference.
	req := httptest.NewRequest(http.MethodPost, "/api/purchases/cancel", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetUnknownTransactionReturns404(t *testing.T) {
	handler := newTestServer(t, &stubPurchaseService{})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/txn_missing", nil)
	req.Header.Set(server.HeaderBuyer, "buyer-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, &stubPurchaseService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
