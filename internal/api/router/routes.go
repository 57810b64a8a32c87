package router

import (
	"github.com/gofiber/fiber/v3"

	basehdl "greep_market/internal/api/base/handler"
)

// Fiber v3: middleware truyền thẳng vào router.Get(path, mw, handler) không được gọi.
// Mọi route có middleware phải đăng ký qua RegisterRouteWithMiddleware (dùng group + Use).

// Router quản lý việc định tuyến cho API
type Router struct {
	app *fiber.App
}

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // /api
	V1   string // /api/v1
}

// NewRoutePrefix tạo RoutePrefix với giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// NewRouter tạo Router
func NewRouter(app *fiber.App) *Router {
	return &Router{app: app}
}

// Route là một route trong nhóm đăng ký chung middleware
type Route struct {
	Method  string
	Path    string
	Handler fiber.Handler
}

// RegisterRouteWithMiddleware đăng ký route với middleware qua group.Use. Dùng từ domain router.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	RegisterRoutesWithMiddleware(router, prefix, middlewares, Route{Method: method, Path: path, Handler: handler})
}

// RegisterRoutesWithMiddleware đăng ký nhiều route cùng prefix, middleware chỉ Use một lần cho cả nhóm.
func RegisterRoutesWithMiddleware(router fiber.Router, prefix string, middlewares []fiber.Handler, routes ...Route) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	for _, rt := range routes {
		switch rt.Method {
		case fiber.MethodGet:
			routeGroup.Get(rt.Path, rt.Handler)
		case fiber.MethodPost:
			routeGroup.Post(rt.Path, rt.Handler)
		case fiber.MethodPut:
			routeGroup.Put(rt.Path, rt.Handler)
		case fiber.MethodDelete:
			routeGroup.Delete(rt.Path, rt.Handler)
		}
	}
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export).
type RegisterFunc func(v1 fiber.Router, r *Router) error

// RegisterSystemRoutes đăng ký /system/health
func RegisterSystemRoutes(v1 fiber.Router, _ *Router) error {
	systemHandler := basehdl.NewSystemHandler()
	RegisterRouteWithMiddleware(v1, "/system", fiber.MethodGet, "/health", nil, systemHandler.HandleHealth)
	return nil
}

// SetupRoutes thiết lập tất cả các route. Caller truyền Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)
	if err := RegisterSystemRoutes(v1, r); err != nil {
		return err
	}
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
