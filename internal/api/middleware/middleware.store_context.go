package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"greep_market/internal/common"
	"greep_market/internal/logger"
)

const (
	// StoreIDHeader là header chứa store ID của request
	StoreIDHeader = "X-Store-ID"
	// LocalsStoreID là key Locals lưu store ID
	LocalsStoreID = "store_id"
)

// StoreContextMiddleware đọc X-Store-ID và lưu vào Locals; thiếu header thì trả 400.
func StoreContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		storeID := strings.TrimSpace(c.Get(StoreIDHeader))
		if storeID == "" {
			return HandleErrorResponse(c, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu header "+StoreIDHeader,
				common.StatusBadRequest,
				nil,
			))
		}
		c.Locals(LocalsStoreID, storeID)
		return c.Next()
	}
}

// GetStoreID lấy store ID đã được StoreContextMiddleware lưu
func GetStoreID(c fiber.Ctx) string {
	storeID, _ := c.Locals(LocalsStoreID).(string)
	return storeID
}

// RequestContext trả về context của request kèm request ID và store ID cho logger.WithContext
func RequestContext(c fiber.Ctx) context.Context {
	ctx := c.Context()
	if rid := requestid.FromContext(c); rid != "" {
		ctx = context.WithValue(ctx, logger.RequestIDKey, rid)
	}
	if storeID := GetStoreID(c); storeID != "" {
		ctx = context.WithValue(ctx, logger.StoreIDKey, storeID)
	}
	return ctx
}
