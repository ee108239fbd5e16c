// Package quote provides the external price-lookup providers. Sources are
// slow and unreliable by contract: every provider has a bounded client
// timeout, and an unknown symbol is reported as (nil, nil), not an error.
package quote

import (
	"time"

	"papertrader/types"
)

type cachedQuote struct {
	quote   types.Quote
	fetched time.Time
}
