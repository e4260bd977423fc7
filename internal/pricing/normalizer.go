package pricing

import (
	"fmt"
	"strings"
)

// MaxTicketTypes caps the pricing set of one event.
const MaxTicketTypes = 10

// TicketType is one canonical priced option produced by Normalize.
type TicketType struct {
	ID          string
	Name        string
	PriceMinor  int64
	Available   int64
	Description string
}

// ValidationError rejects an entire pricing submission. The reason names
// the offending ticket type; partial acceptance is never allowed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Normalize parses a raw submission record into the canonical ticket type
// set. The historical submission formats are tried in strict priority
// order; the first format that yields at least one entry wins and formats
// are never merged.
func Normalize(raw map[string]any) ([]TicketType, error) {
	parsers := []func(map[string]any) ([]TicketType, error){
		parseStructured,
		parseIndexed,
		parseTicketIndexed,
		parseLegacy,
	}

	for _, parse := range parsers {
		entries, err := parse(raw)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			if err := validate(entries); err != nil {
				return nil, err
			}
			return entries, nil
		}
	}

	return nil, validationErrorf("at least one ticket type is required")
}

// Format 1: a structured array of {id?, name, price, available, description?}
// objects under the "pricing" key.
func parseStructured(raw map[string]any) ([]TicketType, error) {
	value, ok := raw["pricing"]
	if !ok {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return nil, nil
	}

	entries := make([]TicketType, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, validationErrorf("ticket type %d is not an object", i+1)
		}

		id := strings.TrimSpace(stringField(fields, "id"))
		if id == "" {
			id = fmt.Sprintf("option_%d", i+1)
		}
		name := strings.TrimSpace(stringField(fields, "name"))

		priceRaw, hasPrice := fields["price"]
		availableRaw, hasAvailable := fields["available"]
		if !hasPrice || !hasAvailable {
			return nil, validationErrorf("ticket type %q is missing price or availability", id)
		}

		price, err := ParseAmount(priceRaw)
		if err != nil {
			return nil, validationErrorf("ticket type %q has an invalid price", id)
		}
		available, err := ParseCount(availableRaw)
		if err != nil {
			return nil, validationErrorf("ticket type %q has an invalid availability", id)
		}

		entries = append(entries, TicketType{
			ID:          id,
			Name:        name,
			PriceMinor:  price,
			Available:   available,
			Description: strings.TrimSpace(stringField(fields, "description")),
		})
	}
	return entries, nil
}

// Formats 2 and 3: indexed flat fields. An entry is included only when
// name, price and available are all present for its index.
func parseIndexedFields(raw map[string]any, nameKey, priceKey, availableKey, descriptionKey func(int) string) ([]TicketType, error) {
	var entries []TicketType
	for i := 0; i < MaxTicketTypes; i++ {
		nameRaw, hasName := raw[nameKey(i)]
		priceRaw, hasPrice := raw[priceKey(i)]
		availableRaw, hasAvailable := raw[availableKey(i)]
		if !hasName || !hasPrice || !hasAvailable {
			continue
		}

		id := fmt.Sprintf("option_%d", i+1)
		price, err := ParseAmount(priceRaw)
		if err != nil {
			return nil, validationErrorf("ticket type %q has an invalid price", id)
		}
		available, err := ParseCount(availableRaw)
		if err != nil {
			return nil, validationErrorf("ticket type %q has an invalid availability", id)
		}

		description := ""
		if descRaw, ok := raw[descriptionKey(i)]; ok {
			description = strings.TrimSpace(fmt.Sprintf("%v", descRaw))
		}

		entries = append(entries, TicketType{
			ID:          id,
			Name:        strings.TrimSpace(fmt.Sprintf("%v", nameRaw)),
			PriceMinor:  price,
			Available:   available,
			Description: description,
		})
	}
	return entries, nil
}

func parseIndexed(raw map[string]any) ([]TicketType, error) {
	return parseIndexedFields(raw,
		func(i int) string { return fmt.Sprintf("pricing_%d_name", i) },
		func(i int) string { return fmt.Sprintf("pricing_%d_price", i) },
		func(i int) string { return fmt.Sprintf("pricing_%d_available", i) },
		func(i int) string { return fmt.Sprintf("pricing_%d_description", i) },
	)
}

func parseTicketIndexed(raw map[string]any) ([]TicketType, error) {
	return parseIndexedFields(raw,
		func(i int) string { return fmt.Sprintf("ticketName_%d", i) },
		func(i int) string { return fmt.Sprintf("ticketPrice_%d", i) },
		func(i int) string { return fmt.Sprintf("ticketAvailable_%d", i) },
		func(i int) string { return fmt.Sprintf("ticketDescription_%d", i) },
	)
}

// Format 4: legacy two-tier regular/VIP fields.
func parseLegacy(raw map[string]any) ([]TicketType, error) {
	var entries []TicketType

	tiers := []struct {
		id, name, priceKey, availableKey string
	}{
		{"regular", "Regular", "regularPrice", "regularAvailable"},
		{"vip", "VIP", "vipPrice", "vipAvailable"},
	}

	for _, tier := range tiers {
		priceRaw, hasPrice := raw[tier.priceKey]
		availableRaw, hasAvailable := raw[tier.availableKey]
		if !hasPrice || !hasAvailable {
			continue
		}

		price, err := ParseAmount(priceRaw)
		if err != nil {
			return nil, validationErrorf("ticket type %q has an invalid price", tier.id)
		}
		available, err := ParseCount(availableRaw)
		if err != nil {
			return nil, validationErrorf("ticket type %q has an invalid availability", tier.id)
		}

		entries = append(entries, TicketType{
			ID:         tier.id,
			Name:       tier.name,
			PriceMinor: price,
			Available:  available,
		})
	}
	return entries, nil
}

func validate(entries []TicketType) error {
	if len(entries) == 0 {
		return validationErrorf("at least one ticket type is required")
	}
	if len(entries) > MaxTicketTypes {
		return validationErrorf("at most %d ticket types are allowed, got %d", MaxTicketTypes, len(entries))
	}

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" {
			return validationErrorf("ticket type %q has a blank name", entry.ID)
		}
		if entry.PriceMinor < 0 {
			return validationErrorf("ticket type %q has a negative price", entry.ID)
		}
		if entry.Available < 0 {
			return validationErrorf("ticket type %q has a negative availability", entry.ID)
		}
		if _, dup := seen[entry.ID]; dup {
			return validationErrorf("duplicate ticket type id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

func stringField(fields map[string]any, key string) string {
	value, ok := fields[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
