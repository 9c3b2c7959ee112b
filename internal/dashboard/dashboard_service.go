// Package dashboard serves the aggregate view of the employee records:
// headcount, department distribution and salary totals.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Algoraver22/employee-hr-platform/internal/employee"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/listcache"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	StatsKeyPrefix  = "employees:stats"
	DefaultStatsTTL = 10 * time.Minute

	// sharedLoadTimeout bounds a collapsed recompute once it no longer
	// follows the leading caller's cancellation.
	sharedLoadTimeout = 10 * time.Second
)

var ErrStatsUnavailable = apperror.New(
	apperror.CodeServiceUnavailable,
	"Employee statistics are unavailable",
	http.StatusServiceUnavailable,
)

type StatsResponse struct {
	TotalEmployees  int64            `json:"totalEmployees"`
	Departments     map[string]int64 `json:"departments"`
	DepartmentCount int              `json:"departmentCount"`
	AverageSalary   string           `json:"averageSalary"`
	TotalSalary     string           `json:"totalSalary"`
}

type Service interface {
	Get(ctx context.Context) (StatsResponse, error)
	// Refresh recomputes the snapshot for the current generation.
	Refresh(ctx context.Context) error
}

type StatsSource interface {
	Stats(ctx context.Context) (employee.Stats, error)
}

type service struct {
	source StatsSource
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(source StatsSource, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &service{source: source, rdb: rdb, ttl: ttl, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Get(ctx context.Context) (StatsResponse, error) {
	if s.rdb == nil {
		return s.compute(ctx)
	}

	gen, err := listcache.Current(ctx, s.rdb)
	if err != nil {
		s.logger.Warn("stats cache generation unavailable, reading store", zap.Error(err))
		return s.compute(ctx)
	}

	key := listcache.Key(StatsKeyPrefix, gen)
	if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var resp StatsResponse
		if json.Unmarshal(cached, &resp) == nil {
			return resp, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		resp, err := s.compute(loadCtx)
		if err != nil {
			return nil, err
		}
		s.store(loadCtx, key, resp)
		return resp, nil
	})
	if err != nil {
		return StatsResponse{}, err
	}
	return v.(StatsResponse), nil
}

// The generation is read before computing: a mutation that lands mid-compute
// bumps past it, leaving this snapshot under a key Get no longer reads.
func (s *service) Refresh(ctx context.Context) error {
	if s.rdb == nil {
		_, err := s.compute(ctx)
		return err
	}

	gen, err := listcache.Current(ctx, s.rdb)
	if err != nil {
		return err
	}
	resp, err := s.compute(ctx)
	if err != nil {
		return err
	}
	key := listcache.Key(StatsKeyPrefix, gen)
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return err
	}

	s.logger.Debug("stats snapshot refreshed",
		zap.Int64("generation", gen),
		zap.Int64("total_employees", resp.TotalEmployees),
	)
	return nil
}

func (s *service) compute(ctx context.Context) (StatsResponse, error) {
	stats, err := s.source.Stats(ctx)
	if err != nil {
		s.logger.Error("compute stats failed", zap.Error(err))
		return StatsResponse{}, ErrStatsUnavailable.WithCause(err)
	}
	return toResponse(stats), nil
}

func (s *service) store(ctx context.Context, key string, resp StatsResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toResponse(stats employee.Stats) StatsResponse {
	departments := stats.Departments
	if departments == nil {
		departments = map[string]int64{}
	}

	avg := decimal.Zero
	if stats.TotalEmployees > 0 {
		avg = stats.TotalSalary.Div(decimal.NewFromInt(stats.TotalEmployees))
	}

	return StatsResponse{
		TotalEmployees:  stats.TotalEmployees,
		Departments:     departments,
		DepartmentCount: len(departments),
		AverageSalary:   avg.StringFixed(2),
		TotalSalary:     stats.TotalSalary.StringFixed(2),
	}
}
