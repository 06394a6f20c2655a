package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/internal/repository"
)

var (
	// Leading SKU-like token at the start of a product name, e.g.
	// "ABC-123 Черна тениска" -> "ABC-123".
	leadingCodeRe = regexp.MustCompile(`^[A-Za-z0-9-]+`)

	// Trailing multiplier annotation, e.g. "Тениска (x3)" -> "Тениска".
	multiplierRe = regexp.MustCompile(`(?i)\s*\(x\d+\)\s*$`)
)

// Matcher resolves a free-text order line to exactly one catalog product.
// Pure lookups, no side effects.
type Matcher struct {
	catalog repository.Catalog
	logger  *slog.Logger
}

// NewMatcher creates a product matcher over the given catalog.
func NewMatcher(catalog repository.Catalog, logger *slog.Logger) *Matcher {
	return &Matcher{catalog: catalog, logger: logger}
}

// Resolve matches a line item's code and name against the catalog. The chain
// is evaluated in order, first hit wins:
//
//  1. each comma-separated candidate code, exact against sku or barcode
//  2. the leading alphanumeric token of the name, exact against sku or barcode
//  3. the name with trailing "(xN)" annotations stripped, case-insensitive
//     substring against product names (arbitrary first match)
//
// Returns domain.ErrProductNotFound when nothing matches. Store errors
// propagate unchanged.
func (m *Matcher) Resolve(ctx context.Context, productCode, productName string) (*domain.Product, error) {
	for _, code := range CandidateCodes(productCode) {
		product, err := m.catalog.FindBySKUOrBarcode(ctx, code)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, fmt.Errorf("match code %q: %w", code, err)
		}
	}

	name := strings.TrimSpace(productName)
	if name == "" {
		return nil, domain.ErrProductNotFound
	}

	if token := leadingCodeRe.FindString(name); token != "" {
		product, err := m.catalog.FindBySKUOrBarcode(ctx, token)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, fmt.Errorf("match name token %q: %w", token, err)
		}
	}

	stripped := strings.TrimSpace(stripMultiplier(name))
	if stripped == "" {
		return nil, domain.ErrProductNotFound
	}

	product, err := m.catalog.SearchByName(ctx, stripped)
	if err == nil {
		m.logger.DebugContext(ctx, "line matched by name substring",
			slog.String("name", stripped),
			slog.String("product_id", product.ID),
		)
		return product, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		return nil, fmt.Errorf("match name %q: %w", stripped, err)
	}

	return nil, domain.ErrProductNotFound
}

// CandidateCodes splits a raw product code field on commas, trims whitespace
// and drops empties.
func CandidateCodes(productCode string) []string {
	if productCode == "" {
		return nil
	}
	parts := strings.Split(productCode, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}

// stripMultiplier removes trailing "(xN)" annotations, including stacked
// ones like "Тениска (x2) (x3)".
func stripMultiplier(name string) string {
	for {
		stripped := multiplierRe.ReplaceAllString(name, "")
		if stripped == name {
			return stripped
		}
		name = stripped
	}
}
