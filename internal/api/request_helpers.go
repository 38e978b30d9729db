package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/kanacards/internal/domain"
)

// maxListLimit bounds the limit query parameter of list endpoints.
const maxListLimit = 1000

// getPathID extracts the card ID from the URL path. Card IDs are free text
// (often kanji), so chi's escaped form is decoded.
func getPathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")

	// chi matches against RawPath when the path holds escaped separators
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(id)
		if err != nil {
			return "", fmt.Errorf("%w: card id has invalid encoding", ErrBadRequest)
		}
		id = decoded
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: card id is required", ErrBadRequest)
	}
	return id, nil
}

// parseTodayQuery reads the optional ?today=YYYY-MM-DD parameter. A missing
// value yields the zero time, which the service resolves to its clock.
func parseTodayQuery(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("today"))
	if raw == "" {
		return time.Time{}, nil
	}
	return domain.ParseDate(raw)
}

// parseLimitQuery reads the optional ?limit=n parameter; 0 means no limit.
func parseLimitQuery(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 || limit > maxListLimit {
		return 0, fmt.Errorf("%w: limit must be between 0 and %d", ErrBadRequest, maxListLimit)
	}
	return limit, nil
}
