package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/internal/models"
)

const (
	DefaultChartMonths = 6
	MaxChartMonths     = 24
)

// Dashboard is the headline count set of the admin home page.
type Dashboard struct {
	TotalUsers      int64 `json:"totalUsers"`
	TotalProperties int64 `json:"totalProperties"`
	TotalMessages   int64 `json:"totalMessages"`
}

type UserCounts struct {
	Total     int64 `json:"total"`
	Tenants   int64 `json:"tenants"`
	Landlords int64 `json:"landlords"`
	Admins    int64 `json:"admins"`
}

type PropertyCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Active   int64 `json:"active"`
}

// Overview breaks the totals down by role and moderation state.
type Overview struct {
	Users      UserCounts     `json:"users"`
	Properties PropertyCounts `json:"properties"`
	Favorites  int64          `json:"favorites"`
	Messages   int64          `json:"messages"`
}

// MonthBucket counts rows created in one calendar month (UTC).
type MonthBucket struct {
	Month      string `json:"month"` // YYYY-MM
	Properties int64  `json:"properties"`
	Users      int64  `json:"users"`
}

type UserFilter struct {
	Role models.Role
	Page
}

// AdminService computes dashboard statistics.
type AdminService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, now: time.Now}
}

func (s *AdminService) count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, Upstream("count", err)
	}
	return n, nil
}

type countSpec struct {
	dst   *int64
	model any
	query string
	args  []any
}

func (s *AdminService) countAll(ctx context.Context, specs []countSpec) error {
	for _, c := range specs {
		n, err := s.count(ctx, c.model, c.query, c.args...)
		if err != nil {
			return err
		}
		*c.dst = n
	}
	return nil
}

func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	err := s.countAll(ctx, []countSpec{
		{dst: &d.TotalUsers, model: &models.User{}},
		{dst: &d.TotalProperties, model: &models.Property{}},
		{dst: &d.TotalMessages, model: &models.ContactMessage{}},
	})
	return d, err
}

func (s *AdminService) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	err := s.countAll(ctx, []countSpec{
		{dst: &o.Users.Total, model: &models.User{}},
		{dst: &o.Users.Tenants, model: &models.User{}, query: "role = ?", args: []any{models.RoleTenant}},
		{dst: &o.Users.Landlords, model: &models.User{}, query: "role = ?", args: []any{models.RoleLandlord}},
		{dst: &o.Users.Admins, model: &models.User{}, query: "role = ?", args: []any{models.RoleAdmin}},
		{dst: &o.Properties.Total, model: &models.Property{}},
		{dst: &o.Properties.Pending, model: &models.Property{}, query: "approved = ? AND rejected = ?", args: []any{false, false}},
		{dst: &o.Properties.Approved, model: &models.Property{}, query: "approved = ?", args: []any{true}},
		{dst: &o.Properties.Rejected, model: &models.Property{}, query: "rejected = ?", args: []any{true}},
		{dst: &o.Properties.Active, model: &models.Property{}, query: "is_active = ?", args: []any{true}},
		{dst: &o.Favorites, model: &models.Favorite{}},
		{dst: &o.Messages, model: &models.ContactMessage{}},
	})
	return o, err
}

// Charts returns per-month creation counts for the last months calendar
// months, oldest first. Bucketing happens here so the query stays portable.
func (s *AdminService) Charts(ctx context.Context, months int) ([]MonthBucket, error) {
	if months <= 0 {
		months = DefaultChartMonths
	}
	if months > MaxChartMonths {
		months = MaxChartMonths
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	buckets := make([]MonthBucket, months)
	index := make(map[string]int, months)
	for i := range buckets {
		key := start.AddDate(0, i, 0).Format("2006-01")
		buckets[i].Month = key
		index[key] = i
	}

	var propertyTimes, userTimes []time.Time
	if err := s.db.WithContext(ctx).Model(&models.Property{}).Where("created_at >= ?", start).Pluck("created_at", &propertyTimes).Error; err != nil {
		return nil, Upstream("chart properties", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("created_at >= ?", start).Pluck("created_at", &userTimes).Error; err != nil {
		return nil, Upstream("chart users", err)
	}
	for _, t := range propertyTimes {
		if i, ok := index[t.UTC().Format("2006-01")]; ok {
			buckets[i].Properties++
		}
	}
	for _, t := range userTimes {
		if i, ok := index[t.UTC().Format("2006-01")]; ok {
			buckets[i].Users++
		}
	}
	return buckets, nil
}

// ListUsers returns accounts newest first, optionally by role.
func (s *AdminService) ListUsers(ctx context.Context, f UserFilter) (PageResult[models.User], error) {
	p := f.Page.Normalize()
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		if !f.Role.Valid() {
			return PageResult[models.User]{}, InvalidField("role", "invalid_value")
		}
		q = q.Where("role = ?", f.Role)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PageResult[models.User]{}, Upstream("count users", err)
	}
	var rows []models.User
	if err := q.Order("created_at DESC, id DESC").Limit(p.Limit).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return PageResult[models.User]{}, Upstream("list users", err)
	}
	return newPageResult(rows, total, p), nil
}

// WithClock returns a copy using now as the time source.
func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	cp := *s
	cp.now = now
	return &cp
}
