// Package router đăng ký các route thuộc domain Analytics.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	analyticshdl "greep_market/internal/api/analytics/handler"
	"greep_market/internal/api/middleware"
	apirouter "greep_market/internal/api/router"
)

// Register đăng ký các route /analytics lên v1 với handler dùng ledger MongoDB
func Register(v1 fiber.Router, r *apirouter.Router) error {
	h, err := analyticshdl.NewAnalyticsHandler()
	if err != nil {
		return fmt.Errorf("create analytics handler: %w", err)
	}
	return RegisterWith(h)(v1, r)
}

// RegisterWith trả về RegisterFunc cho handler cho trước
func RegisterWith(h *analyticshdl.AnalyticsHandler) apirouter.RegisterFunc {
	return func(v1 fiber.Router, _ *apirouter.Router) error {
		apirouter.RegisterRoutesWithMiddleware(v1, "/analytics", []fiber.Handler{middleware.StoreContextMiddleware()},
			apirouter.Route{Method: fiber.MethodGet, Path: "/dashboard", Handler: h.HandleGetDashboard},
			apirouter.Route{Method: fiber.MethodGet, Path: "/expenses/series", Handler: h.HandleGetExpenseSeries},
			apirouter.Route{Method: fiber.MethodGet, Path: "/expenses/stats", Handler: h.HandleGetExpenseStats},
			apirouter.Route{Method: fiber.MethodGet, Path: "/expenses/:id/price-comparison", Handler: h.HandleGetPriceComparison},
		)
		return nil
	}
}
