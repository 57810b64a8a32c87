// Package basehdl chứa các helper dùng chung cho HTTP handler: envelope JSON, bắt panic, health check.
package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"greep_market/internal/common"
	"greep_market/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandlerWrapper chạy fn và bắt panic, trả về 500 thay vì làm rơi kết nối.
func SafeHandlerWrapper(c fiber.Ctx, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithField("stack", string(debug.Stack())).Errorf("Panic trong handler: %v", r)
			err = HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				common.MsgInternalError,
				common.StatusInternalServerError,
				fmt.Sprint(r),
			))
		}
	}()
	return fn()
}

// HandleResponse chuẩn hóa response {code, message, data, status}.
// Lỗi 5xx chỉ trả message chung, chi tiết được log.
func HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	if err == nil {
		return JSONResponse(c, common.StatusOK, fiber.Map{
			"code":    common.StatusOK,
			"message": common.MsgSuccess,
			"data":    data,
			"status":  "success",
		})
	}

	var customErr *common.Error
	if !errors.As(err, &customErr) {
		customErr = &common.Error{
			Code:       common.ErrCodeInternalServer,
			Message:    common.MsgInternalError,
			StatusCode: common.StatusInternalServerError,
		}
	}

	body := fiber.Map{
		"code":    customErr.Code.Code,
		"message": customErr.Message,
		"status":  "error",
	}
	if customErr.StatusCode >= common.StatusInternalServerError {
		logger.WithRequest(c).WithError(err).WithField("code", customErr.Code.Code).Error("Request thất bại")
	} else if customErr.Details != nil {
		body["details"] = detailsOf(customErr.Details)
	}
	return JSONResponse(c, customErr.StatusCode, body)
}

func detailsOf(details any) any {
	if e, ok := details.(error); ok {
		return e.Error()
	}
	return details
}
