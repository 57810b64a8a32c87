// Package analyticshdl chứa HTTP handler cho domain Analytics: dashboard, chuỗi và bảng tổng hợp chi phí, so sánh giá nhập.
package analyticshdl

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	analyticsdto "greep_market/internal/api/analytics/dto"
	analyticssvc "greep_market/internal/api/analytics/service"
	basehdl "greep_market/internal/api/base/handler"
	"greep_market/internal/api/middleware"
	"greep_market/internal/common"
	"greep_market/internal/global"
)

// AnalyticsHandler xử lý các API /analytics/*
type AnalyticsHandler struct {
	AnalyticsService *analyticssvc.AnalyticsService
	ExpenseService   *analyticssvc.ExpenseService
}

// NewAnalyticsHandler tạo handler dùng ledger MongoDB trong registry
func NewAnalyticsHandler() (*AnalyticsHandler, error) {
	ledgers, err := analyticssvc.NewMongoLedgers()
	if err != nil {
		return nil, fmt.Errorf("tạo ledgers: %w", err)
	}
	analytics, err := analyticssvc.NewAnalyticsService(ledgers)
	if err != nil {
		return nil, fmt.Errorf("tạo AnalyticsService: %w", err)
	}
	expenses, err := analyticssvc.NewExpenseService(ledgers, nil)
	if err != nil {
		return nil, fmt.Errorf("tạo ExpenseService: %w", err)
	}
	return &AnalyticsHandler{AnalyticsService: analytics, ExpenseService: expenses}, nil
}

// validate chạy validator toàn cục; lỗi trả về dạng 400
func validate(v interface{}) error {
	if global.Validate == nil {
		return nil
	}
	if err := global.Validate.Struct(v); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}
	return nil
}

func bindQuery(c fiber.Ctx, out interface{}) error {
	if err := c.Bind().Query(out); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}
	return validate(out)
}

// HandleGetDashboard xử lý GET /analytics/dashboard
// Query: dateRange, paymentMethod, orderSource, status, startDate, endDate, month, year
func (h *AnalyticsHandler) HandleGetDashboard(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var filters analyticsdto.DashboardFilters
		if err := bindQuery(c, &filters); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		metrics, err := h.AnalyticsService.GetDashboardMetrics(middleware.RequestContext(c), middleware.GetStoreID(c), filters)
		return basehdl.HandleResponse(c, metrics, err)
	})
}

// HandleGetExpenseSeries xử lý GET /analytics/expenses/series?startDate=&endDate=
// Thiếu hoặc sai ngày thì lấy 30 ngày gần nhất.
func (h *AnalyticsHandler) HandleGetExpenseSeries(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var params analyticsdto.ExpenseQueryParams
		if err := bindQuery(c, &params); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		ctx := middleware.RequestContext(c)
		storeID := middleware.GetStoreID(c)
		w, _ := h.ExpenseService.ResolveWindow(ctx, storeID, params)
		series, err := h.ExpenseService.GetExpenseSeries(ctx, storeID, w.Start, w.End)
		return basehdl.HandleResponse(c, series, err)
	})
}

// HandleGetExpenseStats xử lý GET /analytics/expenses/stats?startDate=&endDate=
// Không có ngày nào thì tổng hợp toàn bộ lịch sử.
func (h *AnalyticsHandler) HandleGetExpenseStats(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var params analyticsdto.ExpenseQueryParams
		if err := bindQuery(c, &params); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		ctx := middleware.RequestContext(c)
		storeID := middleware.GetStoreID(c)
		start, end := h.ExpenseService.ResolveStatsBounds(ctx, storeID, params)
		stats, err := h.ExpenseService.GetExpenseStats(ctx, storeID, start, end)
		return basehdl.HandleResponse(c, stats, err)
	})
}

// HandleGetPriceComparison xử lý GET /analytics/expenses/:id/price-comparison
func (h *AnalyticsHandler) HandleGetPriceComparison(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		expenseID := strings.TrimSpace(c.Params("id"))
		if expenseID == "" {
			return basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Thiếu expense id", common.StatusBadRequest, nil))
		}
		cmp, err := h.ExpenseService.ComparePrice(middleware.RequestContext(c), middleware.GetStoreID(c), expenseID)
		return basehdl.HandleResponse(c, cmp, err)
	})
}
