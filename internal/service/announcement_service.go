package service

import (
	"context"
	"strconv"
	"strings"

	"xhubsell/internal/models"
	"xhubsell/internal/repository"
)

// AnnouncementService lists platform announcements.
type AnnouncementService struct {
	announcements repository.AnnouncementRepository
}

func NewAnnouncementService(announcements repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{announcements: announcements}
}

// List returns announcements ordered high, medium, low. active is the raw
// query value; empty means no filter.
func (s *AnnouncementService) List(ctx context.Context, active string) ([]models.Announcement, error) {
	var filter *bool
	if active = strings.TrimSpace(active); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			return nil, models.NewValidationReason("invalid_active", "active must be true or false")
		}
		filter = &v
	}
	return s.announcements.List(ctx, filter)
}
