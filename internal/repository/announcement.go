package repository

import (
	"context"
	"sort"

	"xhubsell/internal/models"
	"xhubsell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnnouncementRepository defines persistence operations for announcements.
type AnnouncementRepository interface {
	// List returns announcements ordered high > medium > low, newest first
	// within a priority.
	List(ctx context.Context, active *bool) ([]models.Announcement, error)
	Upsert(ctx context.Context, items []models.Announcement) error
}

type announcementRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewAnnouncementRepository returns a new AnnouncementRepository implementation.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db, log: observability.NewRepoLogger("announcements")}
}

func (r *announcementRepository) List(ctx context.Context, active *bool) ([]models.Announcement, error) {
	q := r.db.WithContext(ctx).Model(&models.Announcement{})
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	items := []models.Announcement{}
	if err := q.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority.Weight() > items[j].Priority.Weight()
	})
	return items, nil
}

func (r *announcementRepository) Upsert(ctx context.Context, items []models.Announcement) error {
	if len(items) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "link", "priority", "is_active"}),
	}).Create(&items).Error
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return models.NewInternalError(err)
	}
	return nil
}
