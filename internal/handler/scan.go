package handler

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/fingerprint"
)

var denialTmpl = template.Must(template.New("denial").Parse(
	`<div class="checkin-error"><h2>Cannot check in</h2><p>{{.Message}}</p></div>`))

var checkinFormTmpl = template.Must(template.New("form").Parse(`<div class="checkin-form">
<h2>Attendance Check-In</h2>
<form method="post" action="/checkin" id="checkin-form">
  <input type="hidden" name="token" value="{{.Token}}">
  <label for="student_id">Student ID</label>
  <input type="text" name="student_id" id="student_id" autocomplete="off" required>
  <button type="submit">Check in</button>
</form>
</div>`))

// Scan handles a token being opened on a device. The device signature is
// derived from request headers; the first open binds it to the token.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("token")
	if value == "" {
		http.NotFound(w, r)
		return
	}

	signature := fingerprint.DeriveSignature(r.Header.Get("User-Agent"))
	bound := strings.Join([]string{
		signature.Canonical(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Sec-CH-UA-Platform"),
	}, "|")
	result, err := h.tokenSvc.Open(r.Context(), value, bound)
	if err != nil {
		h.log.Error().Err(err).Str("token", value).Msg("failed to open token")
		writeServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !result.Allowed {
		h.log.Warn().
			Str("token", value).
			Str("reason", result.Reason.String()).
			Str("device_type", signature.Type).
			Msg("scan rejected")
		w.WriteHeader(http.StatusBadRequest)
		if err := denialTmpl.Execute(w, map[string]string{"Message": result.Reason.Message()}); err != nil {
			h.log.Error().Err(err).Msg("failed to render denial page")
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := checkinFormTmpl.Execute(w, map[string]string{"Token": value}); err != nil {
		h.log.Error().Err(err).Msg("failed to render check-in form")
	}
}
