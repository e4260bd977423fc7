package service

import (
	"context"
	"io"
	"strings"

	eventdomain "github.com/smallbiznis/gatepass/internal/event/domain"
	"github.com/smallbiznis/gatepass/internal/pricing"
	"github.com/smallbiznis/gatepass/internal/providers/pdf"
	"github.com/smallbiznis/gatepass/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Events   eventdomain.Repository
	Receipts *pdf.ReceiptGenerator
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	events   eventdomain.Repository
	receipts *pdf.ReceiptGenerator
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("transaction.service"),
		repo:     p.Repo,
		events:   p.Events,
		receipts: p.Receipts,
	}
}

func (s *Service) Get(ctx context.Context, publicID, buyerID string) (*domain.Transaction, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil, domain.ErrNotFound
	}

	txn, err := s.repo.FindByPublicID(ctx, s.db, publicID, strings.TrimSpace(buyerID))
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, domain.ErrNotFound
	}
	return txn, nil
}

func (s *Service) Receipt(ctx context.Context, publicID, buyerID string) (io.Reader, error) {
	txn, err := s.Get(ctx, publicID, buyerID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.StatusCompleted {
		return nil, domain.ErrReceiptUnavailable
	}

	data := pdf.ReceiptData{
		TransactionID:  txn.PublicID,
		BuyerID:        txn.BuyerID,
		DatePaid:       txn.UpdatedAt.Format("Jan 2, 2006"),
		TicketTypeName: txn.TicketTypeName,
		Quantity:       txn.Quantity,
		UnitPrice:      pricing.FormatAmount(txn.UnitPriceMinor),
		Total:          pricing.FormatAmount(txn.AmountMinor),
		Currency:       txn.Currency,
		Provider:       txn.Provider,
		CaptureRef:     txn.ProviderCaptureRef,
	}

	// The event may have been deleted since; the receipt still renders
	// from the snapshot on the transaction.
	event, err := s.events.FindByID(ctx, s.db, txn.EventID)
	if err != nil {
		return nil, err
	}
	if event != nil {
		data.EventTitle = event.Title
		data.Venue = event.Venue
	} else {
		data.EventTitle = "Event " + txn.EventID.String()
	}

	return s.receipts.Generate(ctx, data)
}
