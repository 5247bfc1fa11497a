package admin

import (
	"context"
	"fmt"
	"strings"
)

// Authorizer decides admin access. A user is an admin only when their
// email matches the configured admin address and an admin_users row
// exists for their user id.
type Authorizer struct {
	repo       Repository
	adminEmail string
}

func NewAuthorizer(repo Repository, adminEmail string) *Authorizer {
	return &Authorizer{repo: repo, adminEmail: adminEmail}
}

func (a *Authorizer) IsAdmin(ctx context.Context, userID, email string) (bool, error) {
	if strings.TrimSpace(userID) == "" || !IsAdminEmail(email, a.adminEmail) {
		return false, nil
	}
	u, err := a.repo.GetByClerkID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// EnsureAdmin records userID as an admin if one of emails matches the admin
// address. It reports whether a new row was created.
func (a *Authorizer) EnsureAdmin(ctx context.Context, userID string, emails []string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, nil
	}

	var match string
	for _, e := range emails {
		if IsAdminEmail(e, a.adminEmail) {
			match = normalizeEmail(e)
			break
		}
	}
	if match == "" {
		return false, nil
	}

	existing, err := a.repo.GetByClerkID(ctx, userID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if err := a.repo.Create(ctx, &User{ClerkID: userID, Email: match}); err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return true, nil
}
