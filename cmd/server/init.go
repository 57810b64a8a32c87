package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"greep_market/config"
	"greep_market/internal/database"
	"greep_market/internal/global"
)

// InitGlobal khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()
	initValidator()
	initConfig()
	initDatabase_MongoDB()
}

// initColNames đặt tên các collection mà analytics đọc
func initColNames() {
	global.MongoDB_ColNames = global.DefaultCollectionNames()
	logrus.Info("Initialized collection names")
}

// initValidator đăng ký validator và các custom tag (date_range, local_date, no_xss)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// initConfig đọc cấu hình server
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to initialize config: %v", err)
	}
	global.MongoDB_ServerConfig = cfg
	logrus.Info("Initialized server config")
}

// initDatabase_MongoDB kết nối MongoDB và tạo index analytics
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName_Data)
	if err := database.CreateAnalyticsIndexes(ctx, db); err != nil {
		// Thiếu index chỉ làm chậm truy vấn
		logrus.WithError(err).Warn("Failed to create analytics indexes")
		return
	}
	logrus.Info("Ensured analytics indexes")
}
