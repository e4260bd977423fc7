package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	eventdomain "github.com/smallbiznis/gatepass/internal/event/domain"
	"github.com/smallbiznis/gatepass/internal/pricing"
	"github.com/smallbiznis/gatepass/internal/reporting/domain"
	txdomain "github.com/smallbiznis/gatepass/internal/transaction/domain"
	"github.com/smallbiznis/gatepass/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Events       eventdomain.Repository
	Transactions txdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	events       eventdomain.Repository
	transactions txdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("reporting.service"),
		events:       p.Events,
		transactions: p.Transactions,
	}
}

func (s *Service) History(ctx context.Context, req domain.HistoryRequest) (*domain.HistoryResponse, error) {
	buyerID := strings.TrimSpace(req.BuyerID)
	if buyerID == "" {
		return nil, domain.ErrInvalidBuyer
	}

	filter := txdomain.ListFilter{BuyerID: buyerID}

	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := normalizeStatus(raw)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(req.EventID); raw != "" {
		eventID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidEventID
		}
		filter.EventID = &eventID
	}

	page := pagination.Normalize(req.Page.Page, req.Page.Limit)
	filter.Offset = page.Offset()
	filter.Limit = page.Limit

	items, total, err := s.transactions.ListByBuyer(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	views := make([]domain.HistoryItem, 0, len(items))
	for _, item := range items {
		views = append(views, domain.HistoryItem{
			TransactionID:  item.PublicID,
			EventID:        item.EventID.String(),
			TicketTypeCode: item.TicketTypeCode,
			TicketTypeName: item.TicketTypeName,
			Quantity:       item.Quantity,
			UnitPrice:      pricing.FormatAmount(item.UnitPriceMinor),
			Amount:         pricing.FormatAmount(item.AmountMinor),
			Currency:       item.Currency,
			Status:         item.Status,
			FailureReason:  item.FailureReason,
			CreatedAt:      item.CreatedAt,
		})
	}

	return &domain.HistoryResponse{
		Items:    views,
		PageInfo: pagination.NewPageInfo(page, total),
	}, nil
}

func (s *Service) Summary(ctx context.Context, buyerID string) (*domain.Summary, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return nil, domain.ErrInvalidBuyer
	}

	var row struct {
		CompletedCount  int64
		TotalTickets    int64
		TotalSpentMinor int64
		DistinctEvents  int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT
			COUNT(1) AS completed_count,
			COALESCE(SUM(quantity), 0) AS total_tickets,
			COALESCE(SUM(amount_minor), 0) AS total_spent_minor,
			COUNT(DISTINCT event_id) AS distinct_events
		 FROM transactions
		 WHERE buyer_id = ? AND status = ?`,
		buyerID,
		txdomain.StatusCompleted,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &domain.Summary{
		BuyerID:         buyerID,
		CompletedCount:  row.CompletedCount,
		TotalTickets:    row.TotalTickets,
		TotalSpentMinor: row.TotalSpentMinor,
		TotalSpent:      pricing.FormatAmount(row.TotalSpentMinor),
		DistinctEvents:  row.DistinctEvents,
	}, nil
}

func (s *Service) EventSales(ctx context.Context, id string) (*domain.EventSales, error) {
	eventID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidEventID
	}

	var rows []struct {
		Code         string
		Name         string
		Orders       int64
		TicketsSold  int64
		RevenueMinor int64
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT
			ticket_type_code AS code,
			ticket_type_name AS name,
			COUNT(1) AS orders,
			COALESCE(SUM(quantity), 0) AS tickets_sold,
			COALESCE(SUM(amount_minor), 0) AS revenue_minor
		 FROM transactions
		 WHERE event_id = ? AND status = ?
		 GROUP BY ticket_type_code, ticket_type_name
		 ORDER BY revenue_minor DESC`,
		eventID,
		txdomain.StatusCompleted,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sales := &domain.EventSales{
		EventID:     eventID.String(),
		TicketTypes: make([]domain.TicketTypeSales, 0, len(rows)),
	}
	for _, row := range rows {
		avg := int64(0)
		if row.TicketsSold > 0 {
			avg = row.RevenueMinor / row.TicketsSold
		}
		sales.TotalOrders += row.Orders
		sales.TotalTickets += row.TicketsSold
		sales.TotalRevenueMinor += row.RevenueMinor
		sales.TicketTypes = append(sales.TicketTypes, domain.TicketTypeSales{
			Code:           row.Code,
			Name:           row.Name,
			Orders:         row.Orders,
			TicketsSold:    row.TicketsSold,
			RevenueMinor:   row.RevenueMinor,
			Revenue:        pricing.FormatAmount(row.RevenueMinor),
			AvgTicketMinor: avg,
		})
	}
	sales.TotalRevenue = pricing.FormatAmount(sales.TotalRevenueMinor)

	var buyerRows []struct {
		BuyerID       string
		Orders        int64
		TicketsBought int64
		SpentMinor    int64
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT
			buyer_id,
			COUNT(1) AS orders,
			COALESCE(SUM(quantity), 0) AS tickets_bought,
			COALESCE(SUM(amount_minor), 0) AS spent_minor
		 FROM transactions
		 WHERE event_id = ? AND status = ?
		 GROUP BY buyer_id
		 ORDER BY spent_minor DESC`,
		eventID,
		txdomain.StatusCompleted,
	).Scan(&buyerRows).Error
	if err != nil {
		return nil, err
	}

	sales.Buyers = make([]domain.BuyerSales, 0, len(buyerRows))
	for _, row := range buyerRows {
		sales.Buyers = append(sales.Buyers, domain.BuyerSales{
			BuyerID:       row.BuyerID,
			Orders:        row.Orders,
			TicketsBought: row.TicketsBought,
			SpentMinor:    row.SpentMinor,
			Spent:         pricing.FormatAmount(row.SpentMinor),
		})
	}

	// Sales history outlives the event record; a missing event just means
	// no title to show.
	event, err := s.events.FindByID(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	if event != nil {
		sales.Title = event.Title
	}

	return sales, nil
}

// normalizeStatus maps the historical PAID alias onto COMPLETED and
// rejects anything outside the lifecycle.
func normalizeStatus(raw string) (txdomain.Status, error) {
	status := txdomain.Status(strings.ToUpper(strings.TrimSpace(raw)))
	if status == txdomain.StatusPaid {
		status = txdomain.StatusCompleted
	}
	switch status {
	case txdomain.StatusPending, txdomain.StatusCompleted, txdomain.StatusFailed, txdomain.StatusCancelled:
		return status, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
