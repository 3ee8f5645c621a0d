package scan

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Extractor pulls a candidate product identifier out of raw symbol text.
// It returns ok=false when the text does not have the shape it handles.
type Extractor interface {
	Name() string
	Extract(raw string) (id string, ok bool)
}

var (
	urlPathRe  = regexp.MustCompile(`(?:^|/)products/([^/?#\s]+)`)
	directRe   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	looseRe    = regexp.MustCompile(`[A-Za-z0-9_-]{3,}`)
	payloadIDs = []string{"id", "productId", "product_id", "productID"}
)

type urlPathExtractor struct{}

func (urlPathExtractor) Name() string { return "url-path" }

func (urlPathExtractor) Extract(raw string) (string, bool) {
	m := urlPathRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

type structuredExtractor struct{}

func (structuredExtractor) Name() string { return "structured" }

func (structuredExtractor) Extract(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "{") {
		return "", false
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", false
	}
	for _, key := range payloadIDs {
		switch v := payload[key].(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

type directExtractor struct{}

func (directExtractor) Name() string { return "direct" }

func (directExtractor) Extract(raw string) (string, bool) {
	if !directRe.MatchString(raw) {
		return "", false
	}
	return raw, true
}

type looseExtractor struct{}

func (looseExtractor) Name() string { return "loose" }

func (looseExtractor) Extract(raw string) (string, bool) {
	m := looseRe.FindString(raw)
	return m, m != ""
}

// DefaultExtractors is the extraction chain in priority order.
var DefaultExtractors = []Extractor{
	urlPathExtractor{},
	structuredExtractor{},
	directExtractor{},
	looseExtractor{},
}

// ExtractCandidate runs the chain over raw and returns the first match together
// with the name of the strategy that produced it. Text no strategy handles is
// returned unchanged under "fallback".
func ExtractCandidate(chain []Extractor, raw string) (id, strategy string) {
	raw = strings.TrimSpace(raw)
	for _, e := range chain {
		if id, ok := e.Extract(raw); ok {
			return id, e.Name()
		}
	}
	return raw, "fallback"
}
