package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/srsports/backend/internal/cache"
	"github.com/srsports/backend/internal/logging"
	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/repository"
	"golang.org/x/sync/singleflight"
)

const (
	recentSessionCount = 5
	recentWindow       = 30 * 24 * time.Hour

	// 共有の集計は呼び出し元のキャンセルから切り離すので、別に上限を置く
	summaryTimeout = 15 * time.Second
)

// DashboardService aggregates a user's sessions into profit/loss figures.
type DashboardService interface {
	Summary(ctx context.Context, userID string) (*model.DashboardSummary, error)
}

// CacheObserver receives "hit", "miss" or "error" for every cache lookup.
type CacheObserver interface {
	CacheLookup(result string)
}

// DashboardServiceImpl は DashboardService の実装
type DashboardServiceImpl struct {
	repo     repository.BreakingSessionRepository
	cache    SummaryCache
	observer CacheObserver
	now      func() time.Time

	// 同一ユーザーの同時ミスは 1 回の集計にまとめる
	group singleflight.Group
}

// NewDashboardService creates a DashboardService. cache and observer may be nil.
func NewDashboardService(repo repository.BreakingSessionRepository, cache SummaryCache, observer CacheObserver) *DashboardServiceImpl {
	return &DashboardServiceImpl{repo: repo, cache: cache, observer: observer, now: time.Now}
}

// Summary returns the cached summary when present, otherwise aggregates and caches it.
func (s *DashboardServiceImpl) Summary(ctx context.Context, userID string) (*model.DashboardSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w to view sessions", ErrUnauthenticated)
	}
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		switch {
		case err == nil && cached != nil:
			s.observe("hit")
			return cached, nil
		case err == nil, errors.Is(err, cache.ErrMiss):
			s.observe("miss")
		default:
			s.observe("error")
			logging.Warn("dashboard cache get failed", "user_id", userID, "error", err)
		}
		// 集計前に世代を読む。集計中に無効化されたら Set は捨てられる
		if g, err := s.cache.Generation(ctx, userID); err != nil {
			logging.Warn("dashboard cache generation failed", "user_id", userID, "error", err)
		} else {
			gen, cacheable = g, true
		}
	}

	// 世代ごとにまとめるので、無効化後の呼び出しは古い集計に相乗りしない
	key := userID + "@" + strconv.FormatInt(gen, 10)
	ch := s.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryTimeout)
		defer cancel()

		sessions, err := s.repo.ListByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		summary := Summarize(sessions, s.now())

		if cacheable {
			err := s.cache.Set(ctx, userID, gen, summary)
			switch {
			case errors.Is(err, cache.ErrStale):
				logging.Debug("dashboard summary invalidated while computing", "user_id", userID)
			case err != nil:
				logging.Warn("dashboard cache set failed", "user_id", userID, "error", err)
			}
		}
		return summary, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.DashboardSummary), nil
	}
}

func (s *DashboardServiceImpl) observe(result string) {
	if s.observer != nil {
		s.observer.CacheLookup(result)
	}
}

// Summarize aggregates sessions as of now. Sessions may be in any order.
func Summarize(sessions []*model.BreakingSession, now time.Time) *model.DashboardSummary {
	out := &model.DashboardSummary{
		ByPaymentMethod: []model.PaymentMethodTotal{},
		Recent:          []model.SessionProfit{},
	}
	since := now.Add(-recentWindow)
	byMethod := map[string]*model.PaymentMethodTotal{}

	for _, bs := range sessions {
		profit := bs.SalesPrice - bs.PackageCost
		out.TotalSessions++
		out.TotalCost += bs.PackageCost
		out.TotalSales += bs.SalesPrice
		out.TotalHours += bs.TimeSpent
		if profit > 0 {
			out.ProfitableSessions++
		}
		if !bs.CreatedAt.Before(since) {
			out.Last30DaysSales += bs.SalesPrice
			out.Last30DaysProfit += profit
		}

		key := strings.ToLower(strings.TrimSpace(bs.PaymentMethod))
		pm, ok := byMethod[key]
		if !ok {
			pm = &model.PaymentMethodTotal{PaymentMethod: strings.TrimSpace(bs.PaymentMethod)}
			byMethod[key] = pm
		}
		pm.Sessions++
		pm.Sales += bs.SalesPrice
		pm.Profit += profit
	}

	out.TotalCost = model.RoundCents(out.TotalCost)
	out.TotalSales = model.RoundCents(out.TotalSales)
	out.NetProfit = model.RoundCents(out.TotalSales - out.TotalCost)
	out.TotalHours = model.RoundCents(out.TotalHours)
	if out.TotalHours > 0 {
		out.ProfitPerHour = model.RoundCents(out.NetProfit / out.TotalHours)
	}
	out.Last30DaysSales = model.RoundCents(out.Last30DaysSales)
	out.Last30DaysProfit = model.RoundCents(out.Last30DaysProfit)

	for _, pm := range byMethod {
		pm.Sales = model.RoundCents(pm.Sales)
		pm.Profit = model.RoundCents(pm.Profit)
		out.ByPaymentMethod = append(out.ByPaymentMethod, *pm)
	}
	sort.Slice(out.ByPaymentMethod, func(i, j int) bool {
		a, b := out.ByPaymentMethod[i], out.ByPaymentMethod[j]
		if a.Sales != b.Sales {
			return a.Sales > b.Sales
		}
		return a.PaymentMethod < b.PaymentMethod
	})

	recent := make([]*model.BreakingSession, len(sessions))
	copy(recent, sessions)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentSessionCount {
		recent = recent[:recentSessionCount]
	}
	for _, bs := range recent {
		out.Recent = append(out.Recent, model.SessionProfit{Session: bs, Profit: bs.Profit()})
	}
	return out
}
