package main

import (
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"greep_market/config"
	"greep_market/internal/global"
)

// InitRegistry đăng ký các collection vào global.RegistryCollections
func InitRegistry() {
	if err := InitCollections(global.MongoDB_Session, global.MongoDB_ServerConfig); err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.WithField("collections", global.RegistryCollections.Names()).Info("Initialized collection registry")
}

// InitCollections đăng ký transactions, expenses, products, stores của database nghiệp vụ
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName_Data)
	names := global.MongoDB_ColNames
	for _, name := range []string{names.Transactions, names.Expenses, names.Products, names.Stores} {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}
		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Warnf("Collection %s already registered", name)
		}
	}
	return nil
}
