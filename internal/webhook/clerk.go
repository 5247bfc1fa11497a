package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

const maxBodyBytes = 1 << 20

// Verifier checks a signed webhook delivery. *svix.Webhook satisfies it.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

func NewSvixVerifier(secret string) (Verifier, error) {
	return svix.NewWebhook(secret)
}

type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, userID string, emails []string) (bool, error)
}

type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	ID             string         `json:"id"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

func (d EventData) Emails() []string {
	out := make([]string, 0, len(d.EmailAddresses))
	for _, e := range d.EmailAddresses {
		out = append(out, e.EmailAddress)
	}
	return out
}

// ClerkHandler receives identity provider events and promotes the
// configured admin address when it signs up or changes its email.
type ClerkHandler struct {
	verifier Verifier
	admins   AdminEnsurer
	logger   *slog.Logger
}

func NewClerkHandler(verifier Verifier, admins AdminEnsurer, logger *slog.Logger) *ClerkHandler {
	return &ClerkHandler{verifier: verifier, admins: admins, logger: logger}
}

func (h *ClerkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Header.Get("svix-id") == "" || r.Header.Get("svix-timestamp") == "" || r.Header.Get("svix-signature") == "" {
		writeError(w, http.StatusBadRequest, "missing svix headers")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}

	if err := h.verifier.Verify(body, r.Header); err != nil {
		h.logger.WarnContext(ctx, "webhook signature rejected", "svix_id", r.Header.Get("svix-id"), "err", err)
		writeError(w, http.StatusBadRequest, "invalid webhook signature")
		return
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	switch ev.Type {
	case "user.created", "user.updated":
		created, err := h.admins.EnsureAdmin(ctx, ev.Data.ID, ev.Data.Emails())
		if err != nil {
			h.logger.ErrorContext(ctx, "ensure admin failed", "user_id", ev.Data.ID, "err", err)
			writeError(w, http.StatusInternalServerError, "error processing webhook")
			return
		}
		if created {
			h.logger.InfoContext(ctx, "admin user recorded", "user_id", ev.Data.ID)
		}
	default:
		h.logger.DebugContext(ctx, "webhook event ignored", "type", ev.Type)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "webhook processed"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
