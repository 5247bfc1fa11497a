package httpapi

import (
	"context"
	"net/http"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/auth"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/middleware"
)

// AdminService answers admin checks and lets the configured admin address
// claim its admin row.
type AdminService interface {
	IsAdmin(ctx context.Context, userID, email string) (bool, error)
	EnsureAdmin(ctx context.Context, userID string, emails []string) (bool, error)
}

type adminStatusResponse struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

// AdminStatus tells a signed-in user whether they may use the admin area.
func (h *Handler) AdminStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	isAdmin, err := h.admins.IsAdmin(r.Context(), id.UserID, id.Email)
	if err != nil {
		h.internalError(w, r, "admin check failed", err)
		return
	}
	writeJSON(w, http.StatusOK, adminStatusResponse{UserID: id.UserID, IsAdmin: isAdmin})
}

type adminSetupResponse struct {
	Created bool `json:"created"`
	IsAdmin bool `json:"isAdmin"`
}

// SetupAdmin records the signed-in user as an admin when their email is the
// configured admin address. It works without the identity webhook.
func (h *Handler) SetupAdmin(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	created, err := h.admins.EnsureAdmin(r.Context(), id.UserID, []string{id.Email})
	if err != nil {
		h.internalError(w, r, "admin setup failed", err)
		return
	}
	isAdmin, err := h.admins.IsAdmin(r.Context(), id.UserID, id.Email)
	if err != nil {
		h.internalError(w, r, "admin check failed", err)
		return
	}
	if !isAdmin {
		middleware.WriteError(w, r, http.StatusForbidden, "email does not match the admin address")
		return
	}

	if created {
		h.logger.InfoContext(r.Context(), "admin user created", "user_id", id.UserID)
	}
	writeJSON(w, http.StatusOK, adminSetupResponse{Created: created, IsAdmin: true})
}
