package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Algoraver22/employee-hr-platform/internal/dashboard"
	"github.com/Algoraver22/employee-hr-platform/internal/employee"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/listcache"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	stats   employee.Stats
	err     error
	calls   int
	onStats func(ctx context.Context)
}

func (f *fakeSource) Stats(ctx context.Context) (employee.Stats, error) {
	f.calls++
	if f.onStats != nil {
		f.onStats(ctx)
	}
	return f.stats, f.err
}

func sampleStats() employee.Stats {
	return employee.Stats{
		TotalEmployees: 3,
		Departments:    map[string]int64{"Engineering": 2, "Sales": 1},
		TotalSalary:    decimal.RequireFromString("10000"),
	}
}

func TestService_GetWithoutCache(t *testing.T) {
	src := &fakeSource{stats: sampleStats()}
	svc := dashboard.NewService(src, nil, 0, zap.NewNop())

	resp, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalEmployees)
	assert.Equal(t, 2, resp.DepartmentCount)
	assert.Equal(t, "3333.33", resp.AverageSalary)
	assert.Equal(t, "10000.00", resp.TotalSalary)
}

func TestService_EmptyStore(t *testing.T) {
	svc := dashboard.NewService(&fakeSource{stats: employee.Stats{TotalSalary: decimal.Zero}}, nil, 0, zap.NewNop())

	resp, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "0.00", resp.AverageSalary)
	assert.NotNil(t, resp.Departments)
	assert.Zero(t, resp.DepartmentCount)
}

func TestService_GetCachedUnderGeneration(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	src := &fakeSource{stats: sampleStats()}
	svc := dashboard.NewService(src, rdb, 0, zap.NewNop())
	key := listcache.Key(dashboard.StatsKeyPrefix, 4)

	mock.ExpectGet(listcache.GenerationKey).SetVal("4")
	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `.*`, dashboard.DefaultStatsTTL).SetVal("OK")

	resp, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalEmployees)
	assert.Equal(t, 1, src.calls)

	cached, _ := json.Marshal(resp)
	mock.ExpectGet(listcache.GenerationKey).SetVal("4")
	mock.ExpectGet(key).SetVal(string(cached))

	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Refresh(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	src := &fakeSource{stats: sampleStats()}
	svc := dashboard.NewService(src, rdb, 0, zap.NewNop())

	mock.ExpectGet(listcache.GenerationKey).SetVal("9")
	mock.Regexp().ExpectSet(listcache.Key(dashboard.StatsKeyPrefix, 9), `.*`, dashboard.DefaultStatsTTL).SetVal("OK")

	assert.NoError(t, svc.Refresh(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RefreshReadsGenerationBeforeComputing(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	src := &fakeSource{stats: sampleStats()}
	src.onStats = func(ctx context.Context) {
		// a write commits while the aggregate is running
		_, err := listcache.Bump(ctx, rdb)
		require.NoError(t, err)
	}
	svc := dashboard.NewService(src, rdb, 0, zap.NewNop())

	mock.ExpectGet(listcache.GenerationKey).SetVal("9")
	mock.ExpectIncr(listcache.GenerationKey).SetVal(10)
	mock.Regexp().ExpectSet(listcache.Key(dashboard.StatsKeyPrefix, 9), `.*`, dashboard.DefaultStatsTTL).SetVal("OK")

	assert.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, src.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RefreshSkipsComputeWithoutGeneration(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	src := &fakeSource{stats: sampleStats()}
	svc := dashboard.NewService(src, rdb, 0, zap.NewNop())

	mock.ExpectGet(listcache.GenerationKey).SetErr(errors.New("redis down"))

	assert.Error(t, svc.Refresh(context.Background()))
	assert.Zero(t, src.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetSurvivesLeaderCancellation(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	src := &fakeSource{stats: sampleStats()}
	svc := dashboard.NewService(src, rdb, 0, zap.NewNop())
	key := listcache.Key(dashboard.StatsKeyPrefix, 2)

	ctx, cancel := context.WithCancel(context.Background())
	mock.ExpectGet(listcache.GenerationKey).SetVal("2")
	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `.*`, dashboard.DefaultStatsTTL).SetVal("OK")

	// cancel once the cache lookups are done; the shared load must not inherit it
	src.onStats = func(loadCtx context.Context) {
		cancel()
		assert.NoError(t, loadCtx.Err())
		_, hasDeadline := loadCtx.Deadline()
		assert.True(t, hasDeadline)
	}

	resp, err := svc.Get(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalEmployees)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_StoreFailure(t *testing.T) {
	svc := dashboard.NewService(&fakeSource{err: errors.New("db down")}, nil, 0, zap.NewNop())

	_, err := svc.Get(context.Background())
	assert.True(t, apperror.Is(err, apperror.CodeServiceUnavailable))
	assert.Contains(t, err.Error(), "db down")
	assert.ErrorIs(t, err, dashboard.ErrStatsUnavailable)

	assert.Error(t, svc.Refresh(context.Background()))
}

func TestHandler_GetStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	dashboard.RegisterRoutes(r.Group("/api"), dashboard.NewHandler(dashboard.NewService(&fakeSource{stats: sampleStats()}, nil, 0)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"departmentCount":2`)
	assert.Contains(t, w.Body.String(), `"averageSalary":"3333.33"`)

	failing := gin.New()
	dashboard.RegisterRoutes(failing.Group("/api"), dashboard.NewHandler(dashboard.NewService(&fakeSource{err: errors.New("x")}, nil, 0)))
	w = httptest.NewRecorder()
	failing.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
