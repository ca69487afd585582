package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// maxJSONBody leaves room for JSON escaping around a maximum-size content body.
const maxJSONBody = 8 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// Oversized bodies are cut off by http.MaxBytesReader.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// QueryInt parses an optional integer query parameter. Missing means fallback.
func QueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
