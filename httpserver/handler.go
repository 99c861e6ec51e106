package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/quillpress/quillpress/install"
	"github.com/quillpress/quillpress/metrics"
)

const (
	// SessionCookieName carries the owner's session token after a
	// successful installation.
	SessionCookieName = "quillpress_session"

	// installCommand is the expected value of the form's "cmd" field.
	installCommand = "install"

	// maxFormSize is the maximum allowed request body size (1MB).
	maxFormSize = 1024 * 1024
)

// InstallResponse is the JSON document returned by the install endpoint.
type InstallResponse struct {
	Success  bool     `json:"success"`
	Invalid  []string `json:"invalid,omitempty"`
	Message  string   `json:"message,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

// Handler processes HTTP requests for the provisioning service. It
// guards the install endpoint and translates installer outcomes into
// wire responses.
type Handler struct {
	root      string
	installer *install.Installer
	log       *slog.Logger
}

// NewHandler creates a request handler for the given deployment root.
func NewHandler(root string, installer *install.Installer, log *slog.Logger) *Handler {
	return &Handler{
		root:      root,
		installer: installer,
		log:       log,
	}
}

// HandleInstall runs the installation workflow for a form-encoded
// request.
//
// URL format: POST /api/install
//
// The endpoint refuses with 403 when the deployment is already
// installed or when the request does not carry cmd=install, so a
// stray form post against a live instance can never re-provision it.
func (h *Handler) HandleInstall(w http.ResponseWriter, r *http.Request) {
	if install.IsInstalled(h.root) {
		h.log.Warn("Install request against an installed deployment",
			slog.String("remote", r.RemoteAddr))
		http.Error(w, "Quillpress is already installed.", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		h.log.Error("Failed to parse install form", "err", err)
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	if cmd := r.PostFormValue("cmd"); cmd != installCommand {
		h.log.Warn("Install request with unexpected command", slog.String("cmd", cmd))
		http.Error(w, "Invalid command", http.StatusForbidden)
		return
	}

	start := time.Now()
	outcome := h.installer.Run(r.Context(), install.RequestFromForm(r.PostForm))
	metrics.RecordInstallAttempt(outcomeLabel(outcome), time.Since(start))

	if outcome.Success && outcome.Session != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    outcome.Session.Token,
			Path:     "/",
			Expires:  outcome.Session.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	response := InstallResponse{
		Success:  outcome.Success,
		Invalid:  outcome.Invalid,
		Message:  outcome.Message,
		Redirect: outcome.Redirect,
	}

	w.Header().Set("Content-Type", "application/json")
	if !outcome.Success {
		w.WriteHeader(http.StatusBadRequest)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode install response", "err", err)
	}
}

func outcomeLabel(outcome install.Outcome) string {
	if outcome.Success {
		return "success"
	}
	return outcome.Stage.String()
}
