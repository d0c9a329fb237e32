package htcore

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/open-control-systems/miniboot-hub/components/boot/bootcfg"
)

// TimestampHandler handles the latest application timestamp over HTTP.
//
// A GET request without parameters returns the stored timestamp in decimal.
// A GET request with the "value" query parameter, decimal or 0x-prefixed,
// persists the provided timestamp.
type TimestampHandler struct {
	timestamper bootcfg.Timestamper
}

// NewTimestampHandler creates an HTTP handler for the latest application timestamp.
func NewTimestampHandler(timestamper bootcfg.Timestamper) *TimestampHandler {
	return &TimestampHandler{
		timestamper: timestamper,
	}
}

// ServeHTTP implements an HTTP endpoint logic.
func (h *TimestampHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "error: unsupported method", http.StatusMethodNotAllowed)

		return
	}

	response := ""

	str := r.URL.Query().Get("value")
	if str == "" {
		timestamp, err := h.timestamper.GetTimestamp()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to get timestamp: %v", err),
				http.StatusInternalServerError)

			return
		}

		response = strconv.FormatUint(uint64(timestamp), 10)
	} else {
		timestamp, err := strconv.ParseUint(str, 0, 32)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		if err := h.timestamper.SetTimestamp(uint32(timestamp)); err != nil {
			http.Error(w, fmt.Sprintf("failed to set timestamp: %v", err),
				http.StatusInternalServerError)

			return
		}

		response = "OK"
	}

	WriteText(w, response)
}
