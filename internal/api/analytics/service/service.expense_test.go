package analyticssvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/api/analytics/models"
	"greep_market/internal/common"
)

func floatPtr(v float64) *float64 { return &v }

func newExpenseService(t *testing.T, exp *fakeExpenses, prod *fakeProducts) *ExpenseService {
	t.Helper()
	svc, err := NewExpenseService(&Ledgers{
		Expenses:  exp,
		Products:  prod,
		Timezones: StaticTimezoneResolver{Location: utcPlus3},
	}, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return svc
}

func TestNewExpenseService_RequiresLedger(t *testing.T) {
	_, err := NewExpenseService(&Ledgers{}, nil)
	assert.Error(t, err)
}

func TestGetExpenseSeries_GaplessDaily(t *testing.T) {
	exp := &fakeExpenses{items: []models.Expense{
		{StoreID: testStore, Amount: 20, Date: local(2025, 3, 1, 9, 0)},
		{StoreID: testStore, Amount: 5.5, Date: local(2025, 3, 1, 18, 0)},
		{StoreID: testStore, Amount: 40, Date: local(2025, 3, 4, 9, 0)},
		{StoreID: "store-2", Amount: 999, Date: local(2025, 3, 2, 9, 0)},
	}}
	svc := newExpenseService(t, exp, nil)

	series, err := svc.GetExpenseSeries(context.Background(), testStore, local(2025, 3, 1, 0, 0), local(2025, 3, 4, 23, 59))
	require.NoError(t, err)

	assert.Equal(t, "day", series.Granularity)
	assert.Equal(t, []analyticsdto.ExpenseBucket{
		{Key: "2025-03-01", Amount: 25.5, Count: 2},
		{Key: "2025-03-02", Amount: 0, Count: 0},
		{Key: "2025-03-03", Amount: 0, Count: 0},
		{Key: "2025-03-04", Amount: 40, Count: 1},
	}, series.Series)
}

func TestGetExpenseSeries_MonthlyForLongWindow(t *testing.T) {
	exp := &fakeExpenses{items: []models.Expense{
		{StoreID: testStore, Amount: 10, Date: local(2025, 1, 15, 9, 0)},
		{StoreID: testStore, Amount: 30, Date: local(2025, 3, 2, 9, 0)},
	}}
	svc := newExpenseService(t, exp, nil)

	series, err := svc.GetExpenseSeries(context.Background(), testStore, local(2025, 1, 1, 0, 0), local(2025, 3, 31, 23, 0))
	require.NoError(t, err)
	assert.Equal(t, "month", series.Granularity)
	assert.Equal(t, []analyticsdto.ExpenseBucket{
		{Key: "2025-01", Amount: 10, Count: 1},
		{Key: "2025-02", Amount: 0, Count: 0},
		{Key: "2025-03", Amount: 30, Count: 1},
	}, series.Series)
}

func TestGetExpenseSeries_EndBeforeStart(t *testing.T) {
	svc := newExpenseService(t, &fakeExpenses{}, nil)
	_, err := svc.GetExpenseSeries(context.Background(), testStore, local(2025, 3, 4, 0, 0), local(2025, 3, 1, 0, 0))
	assert.True(t, errors.Is(err, common.ErrInvalidPeriod))
}

func TestGetExpenseSeries_StoreFailureIsError(t *testing.T) {
	svc := newExpenseService(t, &fakeExpenses{fail: true}, nil)
	_, err := svc.GetExpenseSeries(context.Background(), testStore, local(2025, 3, 1, 0, 0), local(2025, 3, 2, 0, 0))
	assert.Error(t, err)
}

func TestResolveWindow_DefaultsToLast30Days(t *testing.T) {
	svc := newExpenseService(t, &fakeExpenses{}, nil)

	w, loc := svc.ResolveWindow(context.Background(), testStore, analyticsdto.ExpenseQueryParams{StartDate: "garbage"})
	assert.Equal(t, utcPlus3, loc)
	assert.Equal(t, local(2025, 2, 13, 0, 0), w.Start)

	w, _ = svc.ResolveWindow(context.Background(), testStore, analyticsdto.ExpenseQueryParams{StartDate: "2025-03-01", EndDate: "2025-03-02"})
	assert.Equal(t, local(2025, 3, 1, 0, 0), w.Start)
}

func TestGetExpenseStats(t *testing.T) {
	exp := &fakeExpenses{items: []models.Expense{
		{StoreID: testStore, Amount: 20, Category: "supplies", Date: local(2025, 3, 1, 9, 0)},
		{StoreID: testStore, Amount: 30, Category: "supplies", Date: local(2025, 3, 2, 9, 0)},
		{StoreID: testStore, Amount: 70, Category: "rent", Date: local(2024, 12, 1, 9, 0)},
	}}
	svc := newExpenseService(t, exp, nil)

	all, err := svc.GetExpenseStats(context.Background(), testStore, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	assert.Equal(t, 120.0, all.TotalAmount)
	assert.Equal(t, []analyticsdto.BreakdownItem{
		{Key: "rent", Amount: 70, Count: 1},
		{Key: "supplies", Amount: 50, Count: 2},
	}, all.ByCategory)

	start := local(2025, 3, 1, 0, 0)
	march, err := svc.GetExpenseStats(context.Background(), testStore, &start, nil)
	require.NoError(t, err)
	assert.Equal(t, 50.0, march.TotalAmount)

	end := local(2025, 2, 1, 0, 0)
	_, err = svc.GetExpenseStats(context.Background(), testStore, &start, &end)
	assert.True(t, errors.Is(err, common.ErrInvalidPeriod))
}

func TestComparePrice(t *testing.T) {
	productID := primitive.NewObjectID()
	expenseID := primitive.NewObjectID()
	exp := &fakeExpenses{items: []models.Expense{
		{ID: expenseID, StoreID: testStore, ProductName: "Rice 5kg", Amount: 125, Quantity: 10, Date: local(2025, 3, 1, 9, 0)},
	}}
	prod := &fakeProducts{items: []models.Product{
		{ID: productID, StoreID: testStore, Name: "rice 5kg", Price: 15, CostPrice: floatPtr(10), IsActive: true},
	}}
	svc := newExpenseService(t, exp, prod)

	cmp, err := svc.ComparePrice(context.Background(), testStore, expenseID.Hex())
	require.NoError(t, err)
	assert.Equal(t, productID.Hex(), cmp.ProductID)
	assert.Equal(t, 10.0, cmp.PreviousCostPrice)
	assert.Equal(t, 12.5, cmp.NewCostPrice)
	assert.Equal(t, 25.0, cmp.PriceChangePercentage)
	assert.Equal(t, 50.0, cmp.MarkupPercentage)
	assert.Equal(t, 15.0, cmp.CurrentSellingPrice)
	assert.Equal(t, 18.75, cmp.SuggestedSellingPrice)
}

func TestComparePrice_NoPreviousCostKeepsPrice(t *testing.T) {
	productID := primitive.NewObjectID()
	expenseID := primitive.NewObjectID()
	exp := &fakeExpenses{items: []models.Expense{
		{ID: expenseID, StoreID: testStore, ProductID: productID.Hex(), Amount: 30, Quantity: 3},
	}}
	prod := &fakeProducts{items: []models.Product{
		{ID: productID, StoreID: testStore, Name: "Oil", Price: 14},
	}}
	svc := newExpenseService(t, exp, prod)

	cmp, err := svc.ComparePrice(context.Background(), testStore, expenseID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 0.0, cmp.MarkupPercentage)
	assert.Equal(t, 100.0, cmp.PriceChangePercentage)
	assert.Equal(t, 14.0, cmp.SuggestedSellingPrice)
}

func TestComparePrice_Errors(t *testing.T) {
	zeroQty := primitive.NewObjectID()
	orphan := primitive.NewObjectID()
	exp := &fakeExpenses{items: []models.Expense{
		{ID: zeroQty, StoreID: testStore, ProductName: "Milk", Amount: 30},
		{ID: orphan, StoreID: testStore, ProductName: "Ghost", Amount: 30, Quantity: 1},
	}}
	prod := &fakeProducts{items: []models.Product{{ID: primitive.NewObjectID(), StoreID: testStore, Name: "Milk", Price: 5}}}
	svc := newExpenseService(t, exp, prod)

	var appErr *common.Error

	_, err := svc.ComparePrice(context.Background(), testStore, zeroQty.Hex())
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.StatusBadRequest, appErr.StatusCode)

	_, err = svc.ComparePrice(context.Background(), testStore, orphan.Hex())
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.StatusNotFound, appErr.StatusCode)

	_, err = svc.ComparePrice(context.Background(), testStore, primitive.NewObjectID().Hex())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestGetExpenseSeries_DailyAcrossFallBack(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	exp := &fakeExpenses{items: []models.Expense{
		{StoreID: testStore, Amount: 12, Date: time.Date(2024, 11, 3, 12, 0, 0, 0, ny)},
	}}
	svc, err := NewExpenseService(&Ledgers{
		Expenses:  exp,
		Timezones: StaticTimezoneResolver{Location: ny},
	}, func() time.Time { return time.Date(2024, 11, 20, 15, 0, 0, 0, ny) })
	require.NoError(t, err)

	w, loc := svc.ResolveWindow(context.Background(), testStore, analyticsdto.ExpenseQueryParams{})
	series, err := svc.GetExpenseSeries(context.Background(), testStore, w.Start, w.End)
	require.NoError(t, err)

	assert.Equal(t, ny, loc)
	assert.Equal(t, "day", series.Granularity)
	require.Len(t, series.Series, 31)
	assert.Equal(t, "2024-10-21", series.Series[0].Key)
	assert.Equal(t, analyticsdto.ExpenseBucket{Key: "2024-11-03", Amount: 12, Count: 1}, series.Series[13])
}
