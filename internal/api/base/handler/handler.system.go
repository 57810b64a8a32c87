package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/mongo"

	"greep_market/internal/common"
	"greep_market/internal/global"
)

// SystemHandler xử lý các route system
type SystemHandler struct {
	// Ping trả về lỗi khi database không dùng được; nil = chưa khởi tạo database
	Ping func(ctx context.Context) error
}

// NewSystemHandler tạo SystemHandler ping MongoDB session toàn cục
func NewSystemHandler() *SystemHandler {
	return NewSystemHandlerWith(global.MongoDB_Session)
}

// NewSystemHandlerWith tạo SystemHandler với client cho trước (nil = chưa khởi tạo)
func NewSystemHandlerWith(client *mongo.Client) *SystemHandler {
	h := &SystemHandler{}
	if client != nil {
		h.Ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	}
	return h
}

// HandleHealth kiểm tra tình trạng hệ thống
// GET /system/health
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	services := fiber.Map{"api": "ok"}
	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}

	if h.Ping == nil {
		healthData["status"] = "degraded"
		services["database"] = "not_initialized"
		return HandleResponse(c, healthData, nil)
	}

	if err := h.Ping(ctx); err != nil {
		healthData["status"] = "degraded"
		services["database"] = "error"
		return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    healthData,
			"status":  "error",
		})
	}
	services["database"] = "ok"
	return HandleResponse(c, healthData, nil)
}
