package services

import (
	"context"
	"sync"
	"time"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	"github.com/bookcycle/bookcycle-backend/internal/pricing"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
)

type StatsService struct {
	stats repo.Stats

	mu       sync.RWMutex
	settings RewardSettings
}

// RewardSettings mirrors the dashboard knobs. The percentages are
// informational; the actual split lives in the pricing package.
type RewardSettings struct {
	DonationRewardPercentage int `json:"donation_reward_percentage"`
	PurchasePricePercentage  int `json:"purchase_price_percentage"`
	MinimumPointsForPurchase int `json:"minimum_points_for_purchase"`
	PointsExpiryDays         int `json:"points_expiry_days"`
	BonusPointsForNewUser    int `json:"bonus_points_for_new_user"`
}

func NewStatsService(stats repo.Stats) *StatsService {
	return &StatsService{
		stats: stats,
		settings: RewardSettings{
			DonationRewardPercentage: pricing.DonationRewardPercent,
			PurchasePricePercentage:  pricing.PurchasePricePercent,
			MinimumPointsForPurchase: 10,
			PointsExpiryDays:         365,
			BonusPointsForNewUser:    50,
		},
	}
}

type Dashboard struct {
	Overview  repo.Overview       `json:"overview"`
	Recent    repo.RecentActivity `json:"recent"`
	Analytics DashboardAnalytics  `json:"analytics"`
}

type DashboardAnalytics struct {
	BooksBySubject []repo.SubjectCount `json:"books_by_subject"`
	BooksTrend     []repo.TrendPoint   `json:"books_trend"`
	TopStudents    []models.User       `json:"top_students"`
}

func (s *StatsService) Dashboard(ctx context.Context, actor Actor) (Dashboard, error) {
	if !actor.Role.IsAdmin() {
		return Dashboard{}, ErrForbidden
	}
	overview, err := s.stats.Overview(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	recent, err := s.stats.RecentActivity(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return Dashboard{}, err
	}
	bySubject, err := s.stats.BooksBySubject(ctx, 10)
	if err != nil {
		return Dashboard{}, err
	}
	trend, err := s.stats.BooksTrend(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return Dashboard{}, err
	}
	top, err := s.stats.TopStudents(ctx, 10)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Overview: overview,
		Recent:   recent,
		Analytics: DashboardAnalytics{
			BooksBySubject: bySubject,
			BooksTrend:     trend,
			TopStudents:    top,
		},
	}, nil
}

func (s *StatsService) BooksByStatus(ctx context.Context) (map[string]int, error) {
	return s.stats.BooksByStatus(ctx)
}

func (s *StatsService) Settings(actor Actor) (RewardSettings, error) {
	if !actor.Role.IsAdmin() {
		return RewardSettings{}, ErrForbidden
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

type UpdateSettingsInput struct {
	DonationRewardPercentage *int `json:"donation_reward_percentage"`
	PurchasePricePercentage  *int `json:"purchase_price_percentage"`
	MinimumPointsForPurchase *int `json:"minimum_points_for_purchase"`
	PointsExpiryDays         *int `json:"points_expiry_days"`
	BonusPointsForNewUser    *int `json:"bonus_points_for_new_user"`
}

func (s *StatsService) UpdateSettings(actor Actor, in UpdateSettingsInput) (RewardSettings, error) {
	if !actor.Role.IsAdmin() {
		return RewardSettings{}, ErrForbidden
	}
	if in.DonationRewardPercentage != nil && (*in.DonationRewardPercentage < 0 || *in.DonationRewardPercentage > 100) {
		return RewardSettings{}, ErrInvalidPercentage
	}
	if in.PurchasePricePercentage != nil && (*in.PurchasePricePercentage < 0 || *in.PurchasePricePercentage > 100) {
		return RewardSettings{}, ErrInvalidPercentage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if in.DonationRewardPercentage != nil {
		s.settings.DonationRewardPercentage = *in.DonationRewardPercentage
	}
	if in.PurchasePricePercentage != nil {
		s.settings.PurchasePricePercentage = *in.PurchasePricePercentage
	}
	if in.MinimumPointsForPurchase != nil {
		s.settings.MinimumPointsForPurchase = *in.MinimumPointsForPurchase
	}
	if in.PointsExpiryDays != nil {
		s.settings.PointsExpiryDays = *in.PointsExpiryDays
	}
	if in.BonusPointsForNewUser != nil {
		s.settings.BonusPointsForNewUser = *in.BonusPointsForNewUser
	}
	return s.settings, nil
}
