// Package scan turns a stream of decoded symbols into a draft inventory
// transaction: deduplication, product resolution, transaction-type rules,
// line aggregation, validation and submission.
package scan

import (
	"time"

	"github.com/erazemk/skener/internal/decoder"
)

// Event is one decoded symbol entering the pipeline.
type Event struct {
	SymbolType decoder.SymbolType `json:"symbol_type"`
	RawText    string             `json:"raw_text"`
	Format     string             `json:"format"`
	Timestamp  time.Time          `json:"timestamp"`
}

// EventFromSymbol converts a decoder symbol into a pipeline event.
func EventFromSymbol(s decoder.Symbol) Event {
	return Event{
		SymbolType: s.Type,
		RawText:    s.Text,
		Format:     s.Format,
		Timestamp:  s.At,
	}
}
