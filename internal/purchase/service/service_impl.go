package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	auditdomain "github.com/smallbiznis/gatepass/internal/audit/domain"
	"github.com/smallbiznis/gatepass/internal/clock"
	"github.com/smallbiznis/gatepass/internal/config"
	eventdomain "github.com/smallbiznis/gatepass/internal/event/domain"
	invdomain "github.com/smallbiznis/gatepass/internal/inventory/domain"
	"github.com/smallbiznis/gatepass/internal/observability/metrics"
	"github.com/smallbiznis/gatepass/internal/outbox"
	"github.com/smallbiznis/gatepass/internal/pricing"
	"github.com/smallbiznis/gatepass/internal/providers/payment"
	paydomain "github.com/smallbiznis/gatepass/internal/providers/payment/domain"
	"github.com/smallbiznis/gatepass/internal/purchase/domain"
	txdomain "github.com/smallbiznis/gatepass/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultProvider = "paypal"

type Params struct {
	fx.In

	Config       config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Events       eventdomain.Repository
	Inventory    invdomain.Service
	Transactions txdomain.Repository
	Providers    *payment.Registry
	Outbox       *outbox.Outbox
	Audit        auditdomain.Service
	Metrics      *metrics.Metrics
}

type Service struct {
	currency     string
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	events       eventdomain.Repository
	inventory    invdomain.Service
	transactions txdomain.Repository
	providers    *payment.Registry
	outbox       *outbox.Outbox
	audit        auditdomain.Service
	metrics      *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		currency:     p.Config.Currency,
		db:           p.DB,
		log:          p.Log.Named("purchase.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		events:       p.Events,
		inventory:    p.Inventory,
		transactions: p.Transactions,
		providers:    p.Providers,
		outbox:       p.Outbox,
		audit:        p.Audit,
		metrics:      p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.CreateResponse, error) {
	req.BuyerID = strings.TrimSpace(req.BuyerID)
	req.TicketTypeCode = strings.TrimSpace(req.TicketTypeCode)
	if req.BuyerID == "" || req.TicketTypeCode == "" || req.EventID == 0 {
		return nil, domain.ErrInvalidRequest
	}
	if req.Quantity <= 0 {
		return nil, invdomain.ErrInvalidQuantity
	}
	providerName := strings.TrimSpace(req.Provider)
	if providerName == "" {
		providerName = defaultProvider
	}

	event, err := s.events.FindByID(ctx, s.db, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, eventdomain.ErrNotFound
	}

	ticketType, err := s.events.FindTicketType(ctx, s.db, event.ID, req.TicketTypeCode)
	if err != nil {
		return nil, err
	}
	if ticketType == nil {
		return nil, eventdomain.ErrTicketTypeNotFound
	}

	// The unit price the buyer saw must still hold, give or take one
	// minor unit of rounding.
	if !pricing.WithinTolerance(req.ClientPriceMinor, ticketType.PriceMinor) {
		s.log.Info("price mismatch on create",
			zap.String("event_id", event.ID.String()),
			zap.String("ticket_type", ticketType.Code),
			zap.Int64("client_price", req.ClientPriceMinor),
			zap.Int64("current_price", ticketType.PriceMinor),
		)
		return nil, domain.ErrPriceMismatch
	}

	// Advisory only; the race-free check is the conditional decrement at
	// settlement.
	ok, err := s.inventory.CheckAvailable(ctx, event.ID, ticketType.Code, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invdomain.ErrInsufficient
	}

	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	amountMinor := ticketType.PriceMinor * req.Quantity
	description := fmt.Sprintf("%s x%d - %s", ticketType.Name, req.Quantity, event.Title)
	order, err := provider.CreateOrder(ctx, paydomain.Amount{
		MinorUnits: amountMinor,
		Currency:   s.currency,
	}, description)
	if err != nil {
		// No record is persisted for an order the provider never opened.
		s.log.Warn("provider order creation failed",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	now := s.clock.Now()
	txn := &txdomain.Transaction{
		ID:               s.genID.Generate(),
		PublicID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		BuyerID:          req.BuyerID,
		EventID:          event.ID,
		TicketTypeCode:   ticketType.Code,
		TicketTypeName:   ticketType.Name,
		Quantity:         req.Quantity,
		UnitPriceMinor:   ticketType.PriceMinor,
		AmountMinor:      amountMinor,
		Currency:         s.currency,
		Provider:         provider.Name(),
		ProviderOrderRef: order.OrderRef,
		Status:           txdomain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.transactions.Insert(ctx, s.db, txn); err != nil {
		return nil, err
	}

	s.metrics.PurchasesCreated.Inc()
	s.auditLog(ctx, txn.BuyerID, "purchase.create", txn.PublicID, map[string]any{
		"event_id":     event.ID.String(),
		"ticket_type":  ticketType.Code,
		"quantity":     req.Quantity,
		"amount_minor": amountMinor,
		"order_ref":    order.OrderRef,
	})
	s.log.Info("purchase created",
		zap.String("transaction_id", txn.PublicID),
		zap.String("order_ref", order.OrderRef),
		zap.Int64("amount_minor", amountMinor),
	)

	return &domain.CreateResponse{
		TransactionID: txn.PublicID,
		OrderRef:      order.OrderRef,
		ApprovalURL:   order.ApprovalURL,
		Status:        txn.Status,
		AmountMinor:   amountMinor,
		Currency:      s.currency,
	}, nil
}

func (s *Service) Complete(ctx context.Context, orderRef string) (*domain.SettleResult, error) {
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		return nil, domain.ErrInvalidRequest
	}

	txn, err := s.transactions.FindPendingByOrderRef(ctx, s.db, orderRef)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		// Already settled, cancelled, or never ours: acknowledge without
		// touching anything so duplicate callbacks stay harmless.
		s.log.Info("complete ignored, no pending transaction", zap.String("order_ref", orderRef))
		return &domain.SettleResult{Processed: true}, nil
	}

	event, err := s.events.FindByID(ctx, s.db, txn.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		s.fail(ctx, txn, txdomain.TerminalUpdate{
			Status:        txdomain.StatusFailed,
			FailureReason: "event no longer exists",
		})
		return nil, domain.ErrConsistency
	}

	ok, err := s.inventory.CheckAvailable(ctx, txn.EventID, txn.TicketTypeCode, txn.Quantity)
	if err != nil {
		if errors.Is(err, invdomain.ErrTicketTypeNotFound) {
			s.fail(ctx, txn, txdomain.TerminalUpdate{
				Status:        txdomain.StatusFailed,
				FailureReason: "ticket type no longer exists",
			})
			return nil, domain.ErrConsistency
		}
		return nil, err
	}
	if !ok {
		s.fail(ctx, txn, txdomain.TerminalUpdate{
			Status:        txdomain.StatusFailed,
			FailureReason: "insufficient inventory at settlement",
		})
		return nil, invdomain.ErrInsufficient
	}

	provider, err := s.providers.Get(txn.Provider)
	if err != nil {
		s.fail(ctx, txn, txdomain.TerminalUpdate{
			Status:        txdomain.StatusFailed,
			FailureReason: "payment provider unavailable",
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	capture, err := provider.CaptureOrder(ctx, orderRef)
	if err != nil {
		s.fail(ctx, txn, txdomain.TerminalUpdate{
			Status:        txdomain.StatusFailed,
			FailureReason: "capture failed: " + err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.inventory.Decrement(ctx, tx, txn.EventID, txn.TicketTypeCode, txn.Quantity); err != nil {
			return err
		}
		updated, err := s.transactions.MarkTerminal(ctx, tx, txn.ID, txdomain.TerminalUpdate{
			Status:         txdomain.StatusCompleted,
			CaptureRef:     capture.CaptureRef,
			PaymentDetails: datatypes.JSON(capture.RawDetails),
		})
		if err != nil {
			return err
		}
		if !updated {
			// Lost the race against another settlement of the same record.
			return txdomain.ErrNotFound
		}
		return s.outbox.PublishTx(ctx, tx, outbox.TopicPurchaseSettled, txn.PublicID, map[string]any{
			"transaction_id": txn.PublicID,
			"event_id":       txn.EventID.String(),
			"ticket_type":    txn.TicketTypeCode,
			"quantity":       txn.Quantity,
			"amount_minor":   txn.AmountMinor,
			"capture_ref":    capture.CaptureRef,
		})
	})
	if err != nil {
		if errors.Is(err, invdomain.ErrInsufficient) {
			// Money was captured but the last units went to someone else.
			// Record the capture reference so reconciliation can refund it.
			s.fail(ctx, txn, txdomain.TerminalUpdate{
				Status:         txdomain.StatusFailed,
				CaptureRef:     capture.CaptureRef,
				PaymentDetails: datatypes.JSON(capture.RawDetails),
				FailureReason:  "inventory exhausted after capture",
			})
			return nil, invdomain.ErrInsufficient
		}
		if errors.Is(err, txdomain.ErrNotFound) {
			return &domain.SettleResult{Processed: true}, nil
		}
		return nil, err
	}

	s.metrics.PurchasesCompleted.Inc()
	s.auditLog(ctx, txn.BuyerID, "purchase.complete", txn.PublicID, map[string]any{
		"order_ref":   orderRef,
		"capture_ref": capture.CaptureRef,
	})
	s.log.Info("purchase completed",
		zap.String("transaction_id", txn.PublicID),
		zap.String("order_ref", orderRef),
		zap.String("capture_ref", capture.CaptureRef),
	)

	return &domain.SettleResult{
		TransactionID: txn.PublicID,
		Status:        txdomain.StatusCompleted,
		CaptureRef:    capture.CaptureRef,
		Processed:     true,
	}, nil
}

func (s *Service) Cancel(ctx context.Context, orderRef string) (*domain.SettleResult, error) {
	// The order reference is optional: an abandoned approval flow may come
	// back without one. There is nothing to transition, so acknowledge.
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		s.log.Info("cancel acknowledged without order reference")
		return &domain.SettleResult{Processed: true}, nil
	}

	txn, err := s.transactions.FindPendingByOrderRef(ctx, s.db, orderRef)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		s.log.Info("cancel ignored, no pending transaction", zap.String("order_ref", orderRef))
		return &domain.SettleResult{Processed: true}, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.transactions.MarkTerminal(ctx, tx, txn.ID, txdomain.TerminalUpdate{
			Status:        txdomain.StatusCancelled,
			FailureReason: "cancelled by buyer",
		})
		if err != nil {
			return err
		}
		if !updated {
			return txdomain.ErrNotFound
		}
		return s.outbox.PublishTx(ctx, tx, outbox.TopicPurchaseCanceled, txn.PublicID, map[string]any{
			"transaction_id": txn.PublicID,
			"order_ref":      orderRef,
		})
	})
	if err != nil {
		if errors.Is(err, txdomain.ErrNotFound) {
			return &domain.SettleResult{Processed: true}, nil
		}
		return nil, err
	}

	s.metrics.PurchasesCancelled.Inc()
	s.auditLog(ctx, txn.BuyerID, "purchase.cancel", txn.PublicID, map[string]any{
		"order_ref": orderRef,
	})
	s.log.Info("purchase cancelled",
		zap.String("transaction_id", txn.PublicID),
		zap.String("order_ref", orderRef),
	)

	return &domain.SettleResult{
		TransactionID: txn.PublicID,
		Status:        txdomain.StatusCancelled,
		Processed:     true,
	}, nil
}

// fail downgrades a PENDING transaction to FAILED. It runs outside the
// settlement transaction so the terminal record survives its rollback.
func (s *Service) fail(ctx context.Context, txn *txdomain.Transaction, update txdomain.TerminalUpdate) {
	updated, err := s.transactions.MarkTerminal(ctx, s.db, txn.ID, update)
	if err != nil {
		s.log.Error("failed to mark transaction failed",
			zap.String("transaction_id", txn.PublicID),
			zap.Error(err),
		)
		return
	}
	if !updated {
		return
	}

	s.metrics.PurchasesFailed.Inc()
	if err := s.outbox.PublishTx(ctx, s.db, outbox.TopicPurchaseFailed, txn.PublicID, map[string]any{
		"transaction_id": txn.PublicID,
		"order_ref":      txn.ProviderOrderRef,
		"reason":         update.FailureReason,
	}); err != nil {
		s.log.Error("failed to publish purchase.failed", zap.Error(err))
	}
	s.log.Warn("purchase failed",
		zap.String("transaction_id", txn.PublicID),
		zap.String("reason", update.FailureReason),
	)
}

func (s *Service) auditLog(ctx context.Context, buyerID, action, transactionID string, metadata map[string]any) {
	if err := s.audit.AuditLog(ctx, "buyer", &buyerID, action, "transaction", &transactionID, metadata); err != nil {
		s.log.Error("audit log write failed", zap.Error(err))
	}
}
