package admin

import (
	"context"
	"time"

	"cozycorner-be/internal/cache"
	"cozycorner-be/internal/menu"
	"cozycorner-be/internal/metrics"
	"cozycorner-be/internal/order"
	"cozycorner-be/internal/reservation"
	"cozycorner-be/internal/review"
	"cozycorner-be/internal/user"
)

const (
	recentLimit   = 5
	revenueWindow = 30 * 24 * time.Hour
)

// Dashboard is the admin landing payload: entity counts, the freshest
// activity, and a 30 day revenue series.
type Dashboard struct {
	TotalOrders        int64                     `json:"totalOrders"`
	TotalReservations  int64                     `json:"totalReservations"`
	TotalReviews       int64                     `json:"totalReviews"`
	ActiveMenuItems    int64                     `json:"activeMenuItems"`
	TotalUsers         int64                     `json:"totalUsers"`
	RecentOrders       []order.Order             `json:"recentOrders"`
	RecentReservations []reservation.Reservation `json:"recentReservations"`
	DailyRevenue       []order.RevenuePoint      `json:"dailyRevenue"`
	Counters           map[string]uint64         `json:"counters"`
}

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	orderRepo       order.Repository
	reservationRepo reservation.Repository
	reviewRepo      review.Repository
	menuRepo        menu.Repository
	userRepo        user.Repository
	cache           *cache.Cache
}

func NewService(
	orderRepo order.Repository,
	reservationRepo reservation.Repository,
	reviewRepo review.Repository,
	menuRepo menu.Repository,
	userRepo user.Repository,
	c *cache.Cache,
) Service {
	return &service{
		orderRepo:       orderRepo,
		reservationRepo: reservationRepo,
		reviewRepo:      reviewRepo,
		menuRepo:        menuRepo,
		userRepo:        userRepo,
		cache:           c,
	}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var cached Dashboard
	if s.cache.GetJSON(ctx, cache.DashboardKey, &cached) {
		metrics.Default.CacheHits.Inc()
		return &cached, nil
	}
	metrics.Default.CacheMisses.Inc()

	d := &Dashboard{}

	var err error
	if d.TotalOrders, err = s.orderRepo.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalReservations, err = s.reservationRepo.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalReviews, err = s.reviewRepo.Count(ctx); err != nil {
		return nil, err
	}
	if d.ActiveMenuItems, err = s.menuRepo.CountAvailable(ctx); err != nil {
		return nil, err
	}
	if d.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = s.orderRepo.Recent(ctx, recentLimit); err != nil {
		return nil, err
	}
	if d.RecentReservations, err = s.reservationRepo.Recent(ctx, recentLimit); err != nil {
		return nil, err
	}
	if d.DailyRevenue, err = s.orderRepo.DailyRevenue(ctx, time.Now().Add(-revenueWindow)); err != nil {
		return nil, err
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []order.Order{}
	}
	if d.RecentReservations == nil {
		d.RecentReservations = []reservation.Reservation{}
	}
	if d.DailyRevenue == nil {
		d.DailyRevenue = []order.RevenuePoint{}
	}
	d.Counters = metrics.Default.Snapshot()

	s.cache.SetJSON(ctx, cache.DashboardKey, d)
	return d, nil
}
