package analyticssvc

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/api/analytics/models"
	"greep_market/internal/common"
	"greep_market/internal/logger"
	"greep_market/internal/timerange"
)

// SalesByMonthWindow: số tháng của chuỗi salesByMonth
const SalesByMonthWindow = 12

// GetDashboardMetrics trả về dashboard của store theo filter, qua cache.
// Lỗi cứng chỉ gồm: thiếu store, kỳ không hợp lệ, lỗi truy vấn tổng doanh thu kỳ chính.
func (s *AnalyticsService) GetDashboardMetrics(ctx context.Context, storeID string, filters analyticsdto.DashboardFilters) (*analyticsdto.DashboardMetrics, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, common.NewError(common.ErrCodeValidationInput, "Thiếu store ID", common.StatusBadRequest, nil)
	}
	loc := s.location(ctx, storeID)
	now := s.now()
	if s.cache == nil {
		return s.computeDashboard(ctx, storeID, filters, loc, now)
	}
	key := DashboardCacheKey(storeID, filters, timerange.FormatInLocalDay(now, loc))
	return s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*analyticsdto.DashboardMetrics, error) {
		return s.computeDashboard(ctx, storeID, filters, loc, now)
	})
}

// location lấy timezone của store; lỗi thì dùng UTC
func (s *AnalyticsService) location(ctx context.Context, storeID string) *time.Location {
	if s.ledgers.Timezones == nil {
		return time.UTC
	}
	loc, err := s.ledgers.Timezones.GetStoreTimezone(ctx, storeID)
	if err != nil || loc == nil {
		logger.WithContext(ctx).WithError(err).WithField("storeId", storeID).Warn("Không resolve được timezone store, dùng UTC")
		return time.UTC
	}
	return loc
}

// dashboardInputs là kết quả thô của các aggregation chạy song song
type dashboardInputs struct {
	primary, previous, today, yesterday, month      BucketTotals
	expPrimary, expPrevious, expToday, expYesterday BucketTotals

	salesSeries, monthSeries, expenseSeries map[string]BucketTotals

	breakdowns   *TransactionBreakdowns
	productSales []ProductSales
	inStock      []models.Product
	inventory    *analyticsdto.InventorySummary
	recent       []models.Transaction
}

// computeDashboard chạy các aggregation độc lập song song trên cùng một kỳ chính rồi ghép payload.
// Mỗi aggregation phụ lỗi thì log và dùng giá trị rỗng.
func (s *AnalyticsService) computeDashboard(ctx context.Context, storeID string, filters analyticsdto.DashboardFilters, loc *time.Location, now time.Time) (*analyticsdto.DashboardMetrics, error) {
	defer logger.LogDuration("dashboard", storeID, time.Now())

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	period, err := ResolvePeriod(filters, now, loc)
	if err != nil {
		return nil, err
	}

	base := NewTransactionQuery(storeID, period.Primary, filters)
	todayW := timerange.TodayRange(now, loc)
	yesterdayW := timerange.YesterdayRange(now, loc)
	trailing := timerange.TrailingMonthsRange(SalesByMonthWindow, now, loc)

	log := logger.WithContext(ctx).WithFields(logrus.Fields{
		"storeId": storeID,
		"filters": filters.Signature(),
		"period":  period.Primary.String(),
	})

	var in dashboardInputs
	g, gctx := errgroup.WithContext(ctx)

	soft := func(metric string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			defer logger.LogDuration("dashboard."+metric, storeID, time.Now())
			if err := fn(gctx); err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"metric": metric,
					"code":   common.ErrCodeAggregation.Code,
				}).Warn("Aggregation failure, dùng giá trị rỗng")
			}
			return nil
		})
	}

	// Tổng doanh thu kỳ chính là lỗi cứng
	g.Go(func() error {
		defer logger.LogDuration("dashboard.totalSales", storeID, time.Now())
		t, err := s.ledgers.Transactions.Totals(gctx, base)
		if err != nil {
			return common.NewError(common.ErrCodeAggregation, common.MsgDashboardError, common.StatusInternalServerError, err)
		}
		in.primary = t
		return nil
	})

	totals := func(dst *BucketTotals, w timerange.Window) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			t, err := s.ledgers.Transactions.Totals(ctx, base.WithWindow(w))
			if err != nil {
				return err
			}
			*dst = t
			return nil
		}
	}
	expenseTotals := func(dst *BucketTotals, w timerange.Window) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			t, err := s.ledgers.Expenses.Totals(ctx, storeID, w)
			if err != nil {
				return err
			}
			*dst = t
			return nil
		}
	}

	soft("previousSales", totals(&in.previous, period.Previous))
	soft("todaySales", totals(&in.today, todayW))
	soft("yesterdaySales", totals(&in.yesterday, yesterdayW))
	soft("monthlySales", totals(&in.month, period.ThisMonth))

	soft("totalExpenses", expenseTotals(&in.expPrimary, period.Primary))
	soft("previousExpenses", expenseTotals(&in.expPrevious, period.Previous))
	soft("todayExpenses", expenseTotals(&in.expToday, todayW))
	soft("yesterdayExpenses", expenseTotals(&in.expYesterday, yesterdayW))

	soft("salesByPeriod", func(ctx context.Context) error {
		m, err := s.ledgers.Transactions.SeriesBuckets(ctx, base, period.Granularity, loc)
		in.salesSeries = m
		return err
	})
	soft("salesByMonth", func(ctx context.Context) error {
		m, err := s.ledgers.Transactions.SeriesBuckets(ctx, base.WithWindow(trailing), timerange.GranularityMonth, loc)
		in.monthSeries = m
		return err
	})
	soft("expensesByPeriod", func(ctx context.Context) error {
		m, err := s.ledgers.Expenses.SeriesBuckets(ctx, storeID, period.Primary, period.Granularity, loc)
		in.expenseSeries = m
		return err
	})
	soft("breakdowns", func(ctx context.Context) error {
		b, err := s.ledgers.Transactions.Breakdowns(ctx, base)
		in.breakdowns = b
		return err
	})
	soft("productSales", func(ctx context.Context) error {
		ps, err := s.ledgers.Transactions.ProductSales(ctx, base)
		in.productSales = ps
		return err
	})
	soft("recentTransactions", func(ctx context.Context) error {
		r, err := s.ledgers.Transactions.Recent(ctx, base, RecentTransactionLimit)
		in.recent = r
		return err
	})
	if s.ledgers.Products != nil {
		soft("inStockProducts", func(ctx context.Context) error {
			p, err := s.ledgers.Products.InStock(ctx, storeID)
			in.inStock = p
			return err
		})
		soft("inventory", func(ctx context.Context) error {
			inv, err := s.ledgers.Products.Inventory(ctx, storeID)
			in.inventory = inv
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Không tính được dashboard")
		return nil, err
	}

	m := assembleDashboard(&in, period, loc, now, trailing)
	return m, nil
}

// assembleDashboard ghép payload từ kết quả thô; mọi map/slice đều khác nil
func assembleDashboard(in *dashboardInputs, period ResolvedPeriod, loc *time.Location, now time.Time, trailing timerange.Window) *analyticsdto.DashboardMetrics {
	sales := in.primary.Amount
	expenses := in.expPrimary.Amount
	profit := sales - expenses
	prevProfit := in.previous.Amount - in.expPrevious.Amount
	todayProfit := in.today.Amount - in.expToday.Amount
	yesterdayProfit := in.yesterday.Amount - in.expYesterday.Amount

	m := &analyticsdto.DashboardMetrics{
		TotalSales:              Round2(sales),
		TotalTransactions:       in.primary.Count,
		AverageTransactionValue: Round2(safeDiv(sales, float64(in.primary.Count))),
		TotalExpenses:           Round2(expenses),
		NetProfit:               Round2(profit),

		TodaySales:          Round2(in.today.Amount),
		TodayTransactions:   in.today.Count,
		TodayExpenses:       Round2(in.expToday.Amount),
		MonthlySales:        Round2(in.month.Amount),
		MonthlyTransactions: in.month.Count,

		GrowthRate: PctChange(in.previous.Amount, sales),
		Changes: analyticsdto.PeriodChanges{
			Sales:        PctChange(in.previous.Amount, sales),
			Expenses:     PctChange(in.expPrevious.Amount, expenses),
			Profit:       PctChange(prevProfit, profit),
			Transactions: PctChange(float64(in.previous.Count), float64(in.primary.Count)),
		},
		DayOverDay: analyticsdto.PeriodChanges{
			Sales:        PctChange(in.yesterday.Amount, in.today.Amount),
			Expenses:     PctChange(in.expYesterday.Amount, in.expToday.Amount),
			Profit:       PctChange(yesterdayProfit, todayProfit),
			Transactions: PctChange(float64(in.yesterday.Count), float64(in.today.Count)),
		},

		SalesByPeriod:    FillSeries(timerange.BucketKeys(period.Primary, period.Granularity, loc), in.salesSeries),
		SalesByMonth:     FillSeries(timerange.BucketKeys(trailing, timerange.GranularityMonth, loc), in.monthSeries),
		ExpensesByPeriod: FillExpenseSeries(timerange.BucketKeys(period.Primary, period.Granularity, loc), in.expenseSeries),

		PaymentMethods: map[string]float64{},
		OrderSources:   map[string]float64{},

		TopProducts:     TopSellers(in.productSales),
		BestPerformers:  BestPerformers(in.productSales),
		WorstPerformers: WorstPerformers(in.inStock, in.productSales),
		FastestMoving:   FastestMoving(in.productSales, timerange.LocalDayCount(period.Primary, loc)),
		MostProfitable:  MostProfitable(in.productSales),

		Inventory:          analyticsdto.InventorySummary{Categories: map[string]int64{}},
		RecentTransactions: make([]analyticsdto.RecentTransaction, 0, len(in.recent)),

		Period: analyticsdto.PeriodInfo{
			Start:         period.Primary.Start,
			End:           period.Primary.End,
			PreviousStart: period.Previous.Start,
			PreviousEnd:   period.Previous.End,
			Granularity:   string(period.Granularity),
			Timezone:      loc.String(),
			Source:        period.Source,
		},
		GeneratedAt: now,
	}

	if in.breakdowns != nil {
		for k, v := range in.breakdowns.PaymentMethods {
			m.PaymentMethods[k] = Round2(v)
		}
		for k, v := range in.breakdowns.OrderSources {
			m.OrderSources[k] = Round2(v)
		}
	}
	if in.inventory != nil {
		m.Inventory.TotalProducts = in.inventory.TotalProducts
		m.Inventory.ActiveProducts = in.inventory.ActiveProducts
		m.Inventory.LowStockCount = in.inventory.LowStockCount
		for k, v := range in.inventory.Categories {
			m.Inventory.Categories[k] = v
		}
	}
	for _, t := range in.recent {
		m.RecentTransactions = append(m.RecentTransactions, analyticsdto.RecentTransaction{
			ID:            t.ID.Hex(),
			TotalAmount:   Round2(t.TotalAmount),
			PaymentMethod: NormalizePaymentMethod(t.PaymentMethod),
			Status:        t.Status,
			OrderSource:   t.OrderSource,
			ItemCount:     len(t.Items),
			CreatedAt:     t.CreatedAt,
		})
	}
	return m
}
