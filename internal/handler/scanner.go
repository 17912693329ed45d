package handler

import (
	"net/http"

	"github.com/shadowbook/platform/internal/service"
)

// ScannerHandler exposes the cross-bookmaker arb scan.
type ScannerHandler struct {
	svc *service.ScannerService
}

// NewScannerHandler creates a new ScannerHandler.
func NewScannerHandler(svc *service.ScannerService) *ScannerHandler {
	return &ScannerHandler{svc: svc}
}

// Scan handles GET /arb/scan. Fetches every feed live, so expect feed
// latency on the response.
func (h *ScannerHandler) Scan(w http.ResponseWriter, r *http.Request) {
	opportunities, err := h.svc.Scan(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": opportunities,
		"count":         len(opportunities),
	})
}
