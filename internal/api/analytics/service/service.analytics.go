package analyticssvc

import (
	"fmt"
	"time"

	"greep_market/internal/common"
	"greep_market/internal/global"
)

// RecentTransactionLimit là số giao dịch gần nhất trả về trong dashboard
const RecentTransactionLimit = 10

// Ledgers gom các nguồn dữ liệu mà analytics đọc
type Ledgers struct {
	Transactions TransactionStore
	Expenses     ExpenseStore
	Products     ProductStore
	Timezones    StoreTimezoneResolver
}

// NewMongoLedgers dựng Ledgers từ các collection đã đăng ký trong global.RegistryCollections
func NewMongoLedgers() (*Ledgers, error) {
	names := global.MongoDB_ColNames
	txColl, ok := global.RegistryCollections.Get(names.Transactions)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", names.Transactions, common.ErrNotFound)
	}
	expColl, ok := global.RegistryCollections.Get(names.Expenses)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", names.Expenses, common.ErrNotFound)
	}
	prodColl, ok := global.RegistryCollections.Get(names.Products)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", names.Products, common.ErrNotFound)
	}
	storeColl, ok := global.RegistryCollections.Get(names.Stores)
	if !ok {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", names.Stores, common.ErrNotFound)
	}

	defaultLoc := time.UTC
	if cfg := global.MongoDB_ServerConfig; cfg != nil && cfg.StoreDefaultTimezone != "" {
		loc, err := LoadLocation(global.RegistryLocations, cfg.StoreDefaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("STORE_DEFAULT_TIMEZONE %q không hợp lệ: %w", cfg.StoreDefaultTimezone, err)
		}
		defaultLoc = loc
	}

	return &Ledgers{
		Transactions: NewMongoTransactionStore(txColl),
		Expenses:     NewMongoExpenseStore(expColl),
		Products:     NewMongoProductStore(prodColl),
		Timezones:    NewMongoStoreTimezoneResolver(storeColl, defaultLoc, global.RegistryLocations),
	}, nil
}

// AnalyticsService tính dashboard của store
type AnalyticsService struct {
	ledgers      Ledgers
	cache        *DashboardCache
	now          func() time.Time
	queryTimeout time.Duration
}

// AnalyticsOptions là tham số của NewAnalyticsServiceWith. Now = nil dùng time.Now; Cache = nil tắt cache.
type AnalyticsOptions struct {
	Ledgers      Ledgers
	Cache        *DashboardCache
	Now          func() time.Time
	QueryTimeout time.Duration
}

// NewAnalyticsServiceWith tạo service với dependencies truyền vào
func NewAnalyticsServiceWith(opts AnalyticsOptions) *AnalyticsService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{
		ledgers:      opts.Ledgers,
		cache:        opts.Cache,
		now:          now,
		queryTimeout: opts.QueryTimeout,
	}
}

// NewAnalyticsService tạo service trên MongoDB với TTL/timeout lấy từ cấu hình server
func NewAnalyticsService(ledgers *Ledgers) (*AnalyticsService, error) {
	if ledgers == nil {
		return nil, fmt.Errorf("ledgers is nil: %w", common.ErrRequiredField)
	}
	cacheTTL := 300 * time.Second
	dedupTTL := 5 * time.Second
	queryTimeout := 20 * time.Second
	if cfg := global.MongoDB_ServerConfig; cfg != nil {
		cacheTTL = cfg.CacheTTL()
		dedupTTL = cfg.DedupTTL()
		queryTimeout = cfg.QueryTimeout()
	}
	return NewAnalyticsServiceWith(AnalyticsOptions{
		Ledgers:      *ledgers,
		Cache:        NewDashboardCache(NewMemoryCacheBackend(cacheTTL), cacheTTL, dedupTTL),
		QueryTimeout: queryTimeout,
	}), nil
}
