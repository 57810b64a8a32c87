package analyticssvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/common"
	"greep_market/internal/logger"
	"greep_market/internal/utility"
)

// CacheBackend là nơi lưu payload dashboard đã serialize. Lỗi của backend chỉ được log, không trả lên caller.
type CacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryCacheBackend lưu payload trong utility.Cache của process
type MemoryCacheBackend struct {
	cache *utility.Cache
}

// NewMemoryCacheBackend tạo backend in-memory, dọn entry hết hạn mỗi phút
func NewMemoryCacheBackend(ttl time.Duration) *MemoryCacheBackend {
	return &MemoryCacheBackend{cache: utility.NewCache(ttl, time.Minute)}
}

// Get implement CacheBackend
func (b *MemoryCacheBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := b.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, false, common.ErrCacheFailure
	}
	return data, true, nil
}

// Set implement CacheBackend
func (b *MemoryCacheBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.cache.SetWithTTL(key, value, ttl)
	return nil
}

// DashboardCache là cache hai tầng cho payload dashboard:
//   - tầng metrics: JSON trong CacheBackend, TTL mặc định 300s
//   - tầng dedup: con trỏ đã decode giữ trong vài giây, cộng singleflight gộp các request trùng đang chạy
//
// Payload trả ra được dùng chung giữa các caller, không được sửa.
type DashboardCache struct {
	backend CacheBackend
	ttl     time.Duration
	dedup   *utility.Cache
	group   singleflight.Group
}

// NewDashboardCache tạo cache. ttl <= 0 tắt tầng metrics, dedupTTL <= 0 tắt tầng dedup (singleflight vẫn chạy).
func NewDashboardCache(backend CacheBackend, ttl, dedupTTL time.Duration) *DashboardCache {
	return &DashboardCache{
		backend: backend,
		ttl:     ttl,
		dedup:   utility.NewCache(dedupTTL, time.Minute),
	}
}

// DashboardCacheKey = storeId + "dashboard" + ngày local + filter đã serialize.
// Payload nào cũng có số liệu "hôm nay" và kỳ tương đối (7d, 30d...), nên sang ngày mới là key mới.
func DashboardCacheKey(storeID string, f analyticsdto.DashboardFilters, localDay string) string {
	return storeID + ":dashboard:" + localDay + ":" + f.Signature()
}

// GetOrCompute trả về payload trong cache, hoặc gọi compute (một lần cho mỗi key đang chạy) rồi lưu lại.
// compute nhận context không bị hủy theo request đầu tiên; caller tự đặt timeout bên trong.
func (c *DashboardCache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (*analyticsdto.DashboardMetrics, error)) (*analyticsdto.DashboardMetrics, error) {
	if v, ok := c.dedup.Get(key); ok {
		return v.(*analyticsdto.DashboardMetrics), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if m, ok := c.load(ctx, key); ok {
			c.dedup.Set(key, m)
			return m, nil
		}
		m, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, m)
		c.dedup.Set(key, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*analyticsdto.DashboardMetrics), nil
}

func (c *DashboardCache) logFailure(ctx context.Context, key, op string, err error) {
	logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
		"cacheKey": key,
		"op":       op,
		"code":     common.ErrCodeCache.Code,
	}).Warn("Dashboard cache failure, xử lý như cache miss")
}

func (c *DashboardCache) load(ctx context.Context, key string) (*analyticsdto.DashboardMetrics, bool) {
	if c.backend == nil || c.ttl <= 0 {
		return nil, false
	}
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logFailure(ctx, key, "get", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var m analyticsdto.DashboardMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		c.logFailure(ctx, key, "decode", err)
		return nil, false
	}
	return &m, true
}

func (c *DashboardCache) store(ctx context.Context, key string, m *analyticsdto.DashboardMetrics) {
	if c.backend == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		c.logFailure(ctx, key, "encode", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logFailure(ctx, key, "set", err)
	}
}
