package validators

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
)

// ParseQueryString returns the trimmed value, truncated to at most maxLen
// bytes without splitting a rune.
func ParseQueryString(r *http.Request, key string, maxLen int) string {
	trimmed := strings.TrimSpace(r.URL.Query().Get(key))
	if maxLen <= 0 || len(trimmed) <= maxLen {
		return trimmed
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut]
}

// ParseQueryCategory reads an optional product category; empty means any.
func ParseQueryCategory(r *http.Request, key string) (enums.ProductCategory, error) {
	raw := ParseQueryString(r, key, 0)
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", nil
	}
	category, err := enums.ParseProductCategory(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown category").WithDetails(map[string]any{"field": key})
	}
	return category, nil
}
