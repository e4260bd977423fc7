package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gatepass/internal/transaction/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO transactions (
			id, public_id, buyer_id, event_id, ticket_type_code, ticket_type_name,
			quantity, unit_price_minor, amount_minor, currency, provider,
			provider_order_ref, provider_capture_ref, status, payment_details,
			failure_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.PublicID,
		txn.BuyerID,
		txn.EventID,
		txn.TicketTypeCode,
		txn.TicketTypeName,
		txn.Quantity,
		txn.UnitPriceMinor,
		txn.AmountMinor,
		txn.Currency,
		txn.Provider,
		txn.ProviderOrderRef,
		txn.ProviderCaptureRef,
		txn.Status,
		txn.PaymentDetails,
		txn.FailureReason,
		txn.CreatedAt,
		txn.UpdatedAt,
	).Error
}

func (r *repo) FindPendingByOrderRef(ctx context.Context, db *gorm.DB, orderRef string) (*domain.Transaction, error) {
	var item domain.Transaction
	err := db.WithContext(ctx).
		Where("provider_order_ref = ? AND status = ?", orderRef, domain.StatusPending).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindByPublicID(ctx context.Context, db *gorm.DB, publicID, buyerID string) (*domain.Transaction, error) {
	var item domain.Transaction
	stmt := db.WithContext(ctx).Where("public_id = ?", publicID)
	if buyerID != "" {
		stmt = stmt.Where("buyer_id = ?", buyerID)
	}
	err := stmt.First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) MarkTerminal(ctx context.Context, db *gorm.DB, id snowflake.ID, update domain.TerminalUpdate) (bool, error) {
	if !update.Status.Terminal() {
		return false, errors.New("terminal update requires a terminal status")
	}

	result := db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET status = ?, provider_capture_ref = ?, payment_details = ?,
		     failure_reason = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		update.Status,
		update.CaptureRef,
		update.PaymentDetails,
		update.FailureReason,
		time.Now().UTC(),
		id,
		domain.StatusPending,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ListByBuyer(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Transaction, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("buyer_id = ?", filter.BuyerID)

	if filter.EventID != nil {
		stmt = stmt.Where("event_id = ?", *filter.EventID)
	}
	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Transaction
	err := stmt.Order("created_at desc, id desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
