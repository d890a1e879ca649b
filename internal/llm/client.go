package llm

import (
	"context"
)

// Client extracts structured deal information from restaurant page text.
// Implementations return raw JSON; parsing and normalization live in
// parser.go so tests can cover them without a live model.
type Client interface {
	ExtractDeals(ctx context.Context, pageText string) (string, error)
}
