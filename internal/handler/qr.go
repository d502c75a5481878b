package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/middleware"
	qrcode "github.com/skip2/go-qrcode"
)

// GenerateQR issues a fresh single-use token and renders it as a QR code
// pointing at the scan URL. Guarded by the in-memory sliding-window
// limiter keyed on client IP.
func (h *Handler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	clientIP := middleware.ClientIP(r)
	if !h.issuanceGate.Allow(clientIP) {
		h.log.Warn().Str("client_ip", clientIP).Msg("issuance rate limit hit")
		writeError(w, http.StatusTooManyRequests, "Too many QR requests. Please wait a moment.")
		return
	}

	token, err := h.tokenSvc.Issue(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to issue token")
		writeServerError(w)
		return
	}

	scanURL := fmt.Sprintf("%s/scan/%s", strings.TrimRight(h.cfg.Server.BaseURL, "/"), token.Value)
	png, err := qrcode.Encode(scanURL, qrcode.Medium, 256)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode QR code")
		writeServerError(w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
