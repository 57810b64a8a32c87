package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"greep_market/internal/database"
	"greep_market/internal/global"
	"greep_market/internal/logger"
	"greep_market/internal/utility"
)

// initLogger khởi tạo logger, cấu hình đọc từ biến môi trường LOG_*
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// mainThread chạy Fiber server tới khi nhận SIGINT/SIGTERM
func mainThread() {
	app := InitFiberApp()
	address := ":" + global.MongoDB_ServerConfig.Address
	log := logger.GetAppLogger()

	go utility.GoProtect("shutdown", func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			log.WithError(err).Error("Error shutting down Fiber")
		}
	})

	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting server with HTTP")

	if err := app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

func main() {
	initLogger()
	defer logger.Shutdown()

	InitGlobal()
	defer func() {
		if n, err := global.RegistryCollections.ClearAll(nil); err == nil {
			logger.GetAppLogger().Infof("Released %d registered collections", n)
		}
		if global.MongoDB_Session != nil {
			_ = database.CloseInstance(global.MongoDB_Session)
		}
	}()

	InitRegistry()

	mainThread()
}
