package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parsePathID extracts the numeric {id} path value
func parsePathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseDate parses a YYYY-MM-DD date string
func parseDate(dateStr string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(dateStr))
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
	return result
}
