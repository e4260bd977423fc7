package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReceiptData is the flattened view of a completed transaction rendered
// into the buyer's receipt.
type ReceiptData struct {
	TransactionID string
	EventTitle    string
	Venue         string
	BuyerID       string
	DatePaid      string

	TicketTypeName string
	Quantity       int64
	UnitPrice      string
	Total          string
	Currency       string

	Provider   string
	CaptureRef string
}

type ReceiptGenerator struct{}

func NewReceiptGenerator() *ReceiptGenerator {
	return &ReceiptGenerator{}
}

func (g *ReceiptGenerator) Generate(ctx context.Context, data ReceiptData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(25,
		text.NewCol(12, "Ticket Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(25,
		col.New(6).Add(
			text.New("Transaction: "+data.TransactionID, props.Text{Top: 0, Size: 9}),
			text.New("Date paid: "+data.DatePaid, props.Text{Top: 4, Size: 9}),
			text.New("Buyer: "+data.BuyerID, props.Text{Top: 8, Size: 9}),
		),
		col.New(6).Add(
			text.New("Paid via "+data.Provider, props.Text{Top: 0, Size: 9, Align: align.Right}),
			text.New("Capture: "+data.CaptureRef, props.Text{Top: 4, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(20,
		col.New(12).Add(
			text.New(data.EventTitle, props.Text{Style: fontstyle.Bold, Size: 13}),
			text.New(data.Venue, props.Text{Top: 6, Size: 9}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, data.Total+" "+data.Currency+" paid on "+data.DatePaid, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(6, "Ticket", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(15,
		text.NewCol(6, data.TicketTypeName, props.Text{Size: 9}),
		text.NewCol(2, fmt.Sprintf("%d", data.Quantity), props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, data.UnitPrice, props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, data.Total, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, data.Total, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
