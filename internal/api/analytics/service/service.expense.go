package analyticssvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/common"
	"greep_market/internal/logger"
	"greep_market/internal/timerange"
)

// ExpenseService tính chuỗi chi phí, bảng tổng hợp chi phí và so sánh giá nhập
type ExpenseService struct {
	ledgers Ledgers
	now     func() time.Time
}

// NewExpenseService tạo service. now = nil dùng time.Now.
func NewExpenseService(ledgers *Ledgers, now func() time.Time) (*ExpenseService, error) {
	if ledgers == nil || ledgers.Expenses == nil {
		return nil, fmt.Errorf("expense ledger is nil: %w", common.ErrRequiredField)
	}
	if now == nil {
		now = time.Now
	}
	return &ExpenseService{ledgers: *ledgers, now: now}, nil
}

func (s *ExpenseService) location(ctx context.Context, storeID string) *time.Location {
	if s.ledgers.Timezones == nil {
		return time.UTC
	}
	loc, err := s.ledgers.Timezones.GetStoreTimezone(ctx, storeID)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

// ResolveWindow parse startDate/endDate theo timezone store; thiếu hoặc sai định dạng thì lấy 30 ngày gần nhất.
func (s *ExpenseService) ResolveWindow(ctx context.Context, storeID string, params analyticsdto.ExpenseQueryParams) (timerange.Window, *time.Location) {
	loc := s.location(ctx, storeID)
	if w, ok := timerange.ParseDateRange(params.StartDate, params.EndDate, loc); ok {
		return w, loc
	}
	return timerange.LastNDaysRange(DefaultPeriodDays, s.now(), loc), loc
}

// ResolveStatsBounds parse từng đầu startDate/endDate độc lập; đầu nào thiếu hoặc sai định dạng thì để mở (nil).
func (s *ExpenseService) ResolveStatsBounds(ctx context.Context, storeID string, params analyticsdto.ExpenseQueryParams) (start, end *time.Time) {
	loc := s.location(ctx, storeID)
	if t, ok := timerange.ParseLocalDate(params.StartDate, loc); ok {
		start = &t
	}
	if t, ok := timerange.ParseLocalDate(params.EndDate, loc); ok {
		e := timerange.EndOfDay(t, loc)
		end = &e
	}
	return start, end
}

// GetExpenseSeries trả về chuỗi chi phí liên tục của [start, end]:
// theo ngày nếu window <= 31 ngày, theo tháng nếu dài hơn; bucket không có chi phí có amount = 0, count = 0.
func (s *ExpenseService) GetExpenseSeries(ctx context.Context, storeID string, start, end time.Time) (*analyticsdto.ExpenseSeries, error) {
	if end.Before(start) {
		return nil, common.InvalidPeriodError(fmt.Sprintf("end %s trước start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	defer logger.LogDuration("expense.series", storeID, time.Now())

	loc := s.location(ctx, storeID)
	w := timerange.Window{Start: start, End: end}
	g := timerange.GranularityFor(w, loc)

	got, err := s.ledgers.Expenses.SeriesBuckets(ctx, storeID, w, g, loc)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return &analyticsdto.ExpenseSeries{
		Start:       start,
		End:         end,
		Granularity: string(g),
		Timezone:    loc.String(),
		Series:      FillExpenseSeries(timerange.BucketKeys(w, g, loc), got),
	}, nil
}

// GetExpenseStats trả về tổng số, tổng tiền, phân bổ theo category/kênh thanh toán/tháng (12) và 10 sản phẩm chi nhiều nhất.
// start và end đều nil thì lấy toàn bộ lịch sử; thiếu một đầu thì đầu đó để mở.
func (s *ExpenseService) GetExpenseStats(ctx context.Context, storeID string, start, end *time.Time) (*analyticsdto.ExpenseStats, error) {
	defer logger.LogDuration("expense.stats", storeID, time.Now())

	loc := s.location(ctx, storeID)
	var w *timerange.Window
	if start != nil || end != nil {
		win := timerange.Window{Start: time.Unix(0, 0).UTC(), End: timerange.EndOfDay(s.now(), loc)}
		if start != nil {
			win.Start = *start
		}
		if end != nil {
			win.End = *end
		}
		if win.End.Before(win.Start) {
			return nil, common.InvalidPeriodError("end trước start")
		}
		w = &win
	}

	stats, err := s.ledgers.Expenses.Stats(ctx, storeID, w, loc)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return stats, nil
}

// ComparePrice so sánh giá nhập mỗi đơn vị của expense với giá vốn hiện tại của sản phẩm tương ứng.
// Markup hiện tại = (giá bán - giá vốn) / giá vốn * 100; giá bán đề xuất giữ nguyên markup trên giá nhập mới.
func (s *ExpenseService) ComparePrice(ctx context.Context, storeID, expenseID string) (*analyticsdto.PriceComparison, error) {
	if s.ledgers.Products == nil {
		return nil, fmt.Errorf("product ledger is nil: %w", common.ErrRequiredField)
	}
	expense, err := s.ledgers.Expenses.FindByID(ctx, storeID, expenseID)
	if err != nil {
		return nil, err
	}
	expense.RecomputeCostPerUnit()
	if expense.CostPerUnit == nil {
		return nil, common.NewError(common.ErrCodeValidationInput, "Expense không có số lượng để tính giá nhập mỗi đơn vị", common.StatusBadRequest, nil)
	}

	product, err := s.ledgers.Products.FindForExpense(ctx, storeID, expense)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrCodeDatabaseQuery, "Không tìm thấy sản phẩm của expense", common.StatusNotFound, err)
		}
		return nil, err
	}

	newCost := *expense.CostPerUnit
	prevCost := 0.0
	if product.CostPrice != nil {
		prevCost = *product.CostPrice
	}

	markup := 0.0
	if prevCost > 0 {
		markup = PctChange(prevCost, product.Price)
	}
	suggested, _ := decimal.NewFromFloat(newCost).
		Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(markup).Div(decimal.NewFromInt(100)))).
		Round(2).
		Float64()
	if prevCost <= 0 {
		suggested = Round2(product.Price)
	}

	name := strings.TrimSpace(product.Name)
	if name == "" {
		name = expense.ProductName
	}
	return &analyticsdto.PriceComparison{
		ExpenseID:             expense.ID.Hex(),
		ProductID:             product.ID.Hex(),
		ProductName:           name,
		PreviousCostPrice:     Round2(prevCost),
		NewCostPrice:          newCost,
		PriceChangePercentage: PctChange(prevCost, newCost),
		MarkupPercentage:      markup,
		CurrentSellingPrice:   Round2(product.Price),
		SuggestedSellingPrice: suggested,
	}, nil
}
