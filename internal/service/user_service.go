package service

import (
	"context"
	"log/slog"

	"xhubsell/internal/models"
	"xhubsell/internal/notifications"
	"xhubsell/internal/observability"
	"xhubsell/internal/repository"
)

// UserService holds account operations outside the auth flow.
type UserService struct {
	users   repository.UserRepository
	sellers repository.SellerRepository
	events  EventPublisher
}

// NewUserService wires the user service.
func NewUserService(users repository.UserRepository, sellers repository.SellerRepository) *UserService {
	return &UserService{users: users, sellers: sellers}
}

// WithEvents makes UpdateRole tell the affected user to sign in again.
func (s *UserService) WithEvents(p EventPublisher) *UserService {
	s.events = p
	return s
}

// UpdateRole changes a user's role. Switching to SELLER creates a
// PENDING_VERIFICATION profile when the user has none.
func (s *UserService) UpdateRole(ctx context.Context, userID uint, rawRole string) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "UpdateRole")
	defer func() { observability.EndSpan(span, err) }()

	role, ok := models.ParseRole(rawRole)
	if !ok {
		return nil, models.NewValidationReason("invalid_role", "role must be one of ADMIN, SELLER, RECRUITER, CLIENT")
	}
	user, err = s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user role updated", slog.Uint64("target_user_id", uint64(userID)), slog.String("role", string(role)))
	if s.events != nil {
		// Tokens carry the role, so the client must refresh to pick it up.
		ev := notifications.Event{Type: notifications.EventRoleChanged, UserID: userID, Role: string(role)}
		if perr := s.events.PublishUser(ctx, userID, ev); perr != nil {
			slog.WarnContext(ctx, "role change notification not sent", slog.String("error", perr.Error()))
		}
	}
	return user, nil
}

// SellerProfile returns the seller profile owned by userID.
func (s *UserService) SellerProfile(ctx context.Context, userID uint) (*models.SellerProfile, error) {
	return s.sellers.GetByUserID(ctx, userID)
}
