package pricing

import (
	"errors"
	"testing"
)

func TestNormalizeStructuredArray(t *testing.T) {
	raw := map[string]any{
		"pricing": []any{
			map[string]any{"name": "Early Bird", "price": 50.00, "available": 100.0},
			map[string]any{"id": "vip", "name": "VIP", "price": "150.00", "available": 10.0, "description": "front row"},
		},
	}

	entries, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "option_1" {
		t.Fatalf("expected synthesized id option_1, got %q", entries[0].ID)
	}
	if entries[0].PriceMinor != 5000 {
		t.Fatalf("expected 5000 minor units, got %d", entries[0].PriceMinor)
	}
	if entries[1].ID != "vip" || entries[1].PriceMinor != 15000 {
		t.Fatalf("unexpected vip entry: %+v", entries[1])
	}
	if entries[1].Description != "front row" {
		t.Fatalf("expected description to survive, got %q", entries[1].Description)
	}
}

func TestNormalizeIndexedFields(t *testing.T) {
	raw := map[string]any{
		"pricing_0_name":      "General",
		"pricing_0_price":     "25.50",
		"pricing_0_available": "200",
		"pricing_2_name":      "Balcony",
		"pricing_2_price":     40.0,
		"pricing_2_available": 50.0,
		// price present but availability missing: skipped, not an error
		"pricing_5_name":  "Broken",
		"pricing_5_price": 10.0,
	}

	entries, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "option_1" || entries[1].ID != "option_3" {
		t.Fatalf("expected ids from field index, got %q and %q", entries[0].ID, entries[1].ID)
	}
	if entries[0].PriceMinor != 2550 {
		t.Fatalf("expected 2550 minor units, got %d", entries[0].PriceMinor)
	}
}

func TestNormalizeTicketPrefixedFields(t *testing.T) {
	raw := map[string]any{
		"ticketName_0":        "Standard",
		"ticketPrice_0":       15.0,
		"ticketAvailable_0":   300.0,
		"ticketDescription_0": "standing",
	}

	entries, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Name != "Standard" || entries[0].Description != "standing" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestNormalizeLegacyTiers(t *testing.T) {
	raw := map[string]any{
		"regularPrice":     20.0,
		"regularAvailable": 100.0,
		"vipPrice":         "80.00",
		"vipAvailable":     "5",
	}

	entries, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "regular" || entries[0].Name != "Regular" {
		t.Fatalf("unexpected regular entry: %+v", entries[0])
	}
	if entries[1].ID != "vip" || entries[1].Name != "VIP" || entries[1].PriceMinor != 8000 {
		t.Fatalf("unexpected vip entry: %+v", entries[1])
	}
}

func TestNormalizePriorityOrderWins(t *testing.T) {
	// Structured array and legacy fields both present: only the structured
	// format may contribute, never a merge.
	raw := map[string]any{
		"pricing": []any{
			map[string]any{"name": "Only", "price": 10.0, "available": 1.0},
		},
		"regularPrice":     20.0,
		"regularAvailable": 100.0,
	}

	entries, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Only" {
		t.Fatalf("expected only the structured entry, got %+v", entries)
	}
}

func TestNormalizeIndexedBeatsLegacy(t *testing.T) {
	raw := map[string]any{
		"pricing_0_name":      "General",
		"pricing_0_price":     25.0,
		"pricing_0_available": 200.0,
		"vipPrice":            80.0,
		"vipAvailable":        5.0,
	}

	entries, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "option_1" {
		t.Fatalf("expected indexed format to win, got %+v", entries)
	}
}

func TestNormalizeRejectsEmptySubmission(t *testing.T) {
	if _, err := Normalize(map[string]any{"title": "no pricing here"}); err == nil {
		t.Fatalf("expected validation error for empty submission")
	}
}

func TestNormalizeRejectsBlankName(t *testing.T) {
	raw := map[string]any{
		"pricing": []any{
			map[string]any{"name": "  ", "price": 10.0, "available": 5.0},
		},
	}

	_, err := Normalize(raw)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Reason == "" {
		t.Fatalf("expected a reason naming the ticket type")
	}
}

func TestNormalizeRejectsNegativePrice(t *testing.T) {
	raw := map[string]any{
		"pricing": []any{
			map[string]any{"name": "Bad", "price": -1.0, "available": 5.0},
		},
	}
	if _, err := Normalize(raw); err == nil {
		t.Fatalf("expected validation error for negative price")
	}
}

func TestNormalizeRejectsNegativeAvailability(t *testing.T) {
	raw := map[string]any{
		"regularPrice":     20.0,
		"regularAvailable": -3.0,
	}
	if _, err := Normalize(raw); err == nil {
		t.Fatalf("expected validation error for negative availability")
	}
}

func TestNormalizeRejectsTooManyEntries(t *testing.T) {
	items := make([]any, 11)
	for i := range items {
		items[i] = map[string]any{"name": "Tier", "price": 1.0, "available": 1.0}
	}
	if _, err := Normalize(map[string]any{"pricing": items}); err == nil {
		t.Fatalf("expected validation error for more than 10 ticket types")
	}
}

func TestNormalizeRejectsDuplicateIDs(t *testing.T) {
	raw := map[string]any{
		"pricing": []any{
			map[string]any{"id": "vip", "name": "VIP", "price": 10.0, "available": 1.0},
			map[string]any{"id": "vip", "name": "VIP Again", "price": 20.0, "available": 1.0},
		},
	}
	if _, err := Normalize(raw); err == nil {
		t.Fatalf("expected validation error for duplicate ids")
	}
}
