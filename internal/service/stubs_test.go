package service

import (
	"context"
	"sync"

	"xhubsell/internal/catalog"
	"xhubsell/internal/models"
	"xhubsell/internal/notifications"
	"xhubsell/internal/repository"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User, *models.SellerProfile) error
	updateRoleFn    func(context.Context, uint, models.Role) (*models.User, error)
	countByRoleFn   func(context.Context, models.Role) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User, profile *models.SellerProfile) error {
	return s.createFn(ctx, user, profile)
}
func (s *userRepoStub) UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	return s.updateRoleFn(ctx, id, role)
}
func (s *userRepoStub) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return s.countByRoleFn(ctx, role)
}

// noopUserRepo finds nobody and accepts every write.
func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn: func(_ context.Context, u *models.User, p *models.SellerProfile) error {
			u.ID = 1
			if p != nil {
				p.ID = 1
				p.UserID = u.ID
			}
			return nil
		},
		updateRoleFn: func(_ context.Context, id uint, role models.Role) (*models.User, error) {
			return &models.User{ID: id, Role: role}, nil
		},
		countByRoleFn: func(context.Context, models.Role) (int64, error) { return 0, nil },
	}
}

type sellerRepoStub struct {
	searchFn        func(context.Context, catalog.Query) ([]catalog.SellerRecord, int64, error)
	getByIDFn       func(context.Context, uint) (*models.SellerProfile, error)
	getByUserIDFn   func(context.Context, uint) (*models.SellerProfile, error)
	existsFn        func(context.Context, uint) (bool, error)
	countByStatusFn func(context.Context, models.SellerStatus) (int64, error)
}

var _ repository.SellerRepository = (*sellerRepoStub)(nil)

func (s *sellerRepoStub) Search(ctx context.Context, q catalog.Query) ([]catalog.SellerRecord, int64, error) {
	return s.searchFn(ctx, q)
}
func (s *sellerRepoStub) GetByID(ctx context.Context, id uint) (*models.SellerProfile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *sellerRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.SellerProfile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *sellerRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *sellerRepoStub) Create(context.Context, *models.SellerProfile) error { return nil }
func (s *sellerRepoStub) SetCategories(context.Context, uint, []uint) error   { return nil }
func (s *sellerRepoStub) CountByStatus(ctx context.Context, status models.SellerStatus) (int64, error) {
	return s.countByStatusFn(ctx, status)
}

// favoriteRepoStub keeps favorites in a map keyed by (user, seller).
type favoriteRepoStub struct {
	rows   map[[2]uint]uint
	nextID uint
	// raceOnInsert makes Insert report a concurrent duplicate.
	raceOnInsert bool
	err          error
}

func newFavoriteRepoStub() *favoriteRepoStub {
	return &favoriteRepoStub{rows: map[[2]uint]uint{}}
}

func (s *favoriteRepoStub) Get(_ context.Context, userID, sellerID uint) (*models.Favorite, error) {
	if s.err != nil {
		return nil, s.err
	}
	id, ok := s.rows[[2]uint{userID, sellerID}]
	if !ok {
		return nil, nil
	}
	return &models.Favorite{ID: id, UserID: userID, SellerID: sellerID}, nil
}

func (s *favoriteRepoStub) Insert(_ context.Context, userID, sellerID uint) (bool, error) {
	key := [2]uint{userID, sellerID}
	if s.raceOnInsert {
		s.nextID++
		s.rows[key] = s.nextID
		return false, nil
	}
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	s.nextID++
	s.rows[key] = s.nextID
	return true, nil
}

func (s *favoriteRepoStub) Delete(_ context.Context, id uint) error {
	for k, v := range s.rows {
		if v == id {
			delete(s.rows, k)
		}
	}
	return nil
}

func (s *favoriteRepoStub) ListSellerIDs(_ context.Context, userID uint) ([]uint, error) {
	var ids []uint
	for k := range s.rows {
		if k[0] == userID {
			ids = append(ids, k[1])
		}
	}
	return ids, nil
}

type categoryRepoStub struct {
	listFn  func(context.Context) ([]models.CategoryWithCount, error)
	countFn func(context.Context) (int64, error)
}

func (s *categoryRepoStub) ListWithSellerCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	return nil, models.NewNotFoundError("Category", slug)
}
func (s *categoryRepoStub) Upsert(context.Context, []models.Category) error { return nil }
func (s *categoryRepoStub) Count(ctx context.Context) (int64, error)      { return s.countFn(ctx) }

type bannerRepoStub struct {
	banners map[uint]*models.Banner
	added   map[uint]int64
	addErr  error
}

func newBannerRepoStub(banners ...models.Banner) *bannerRepoStub {
	s := &bannerRepoStub{banners: map[uint]*models.Banner{}, added: map[uint]int64{}}
	for i := range banners {
		b := banners[i]
		s.banners[b.ID] = &b
	}
	return s
}

func (s *bannerRepoStub) List(_ context.Context, _ repository.BannerFilter) ([]models.Banner, error) {
	out := []models.Banner{}
	for id := uint(1); id <= uint(len(s.banners)); id++ {
		if b, ok := s.banners[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *bannerRepoStub) GetByID(_ context.Context, id uint) (*models.Banner, error) {
	b, ok := s.banners[id]
	if !ok {
		return nil, models.NewNotFoundError("Banner", id)
	}
	cp := *b
	return &cp, nil
}

func (s *bannerRepoStub) AddImpressions(_ context.Context, id uint, n int64) (int64, error) {
	if s.addErr != nil {
		return 0, s.addErr
	}
	b, ok := s.banners[id]
	if !ok {
		return 0, models.NewNotFoundError("Banner", id)
	}
	b.Impressions += n
	s.added[id] += n
	return b.Impressions, nil
}

func (s *bannerRepoStub) Upsert(context.Context, []models.Banner) error { return nil }

type flagStub map[string]bool

func (f flagStub) Enabled(name string, _ uint) bool { return f[name] }

// recordingPublisher captures published events per recipient.
type recordingPublisher struct {
	mu   sync.Mutex
	sent map[uint][]notifications.Event
	err  error
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[uint][]notifications.Event{}
	}
	p.sent[userID] = append(p.sent[userID], ev)
	return p.err
}
