package db

import (
	"time"

	"canteen/internal/config"
	"canteen/internal/domain/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。SQLログはlogrusへ。
func Connect(cfg config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.IsProd() && cfg.LogLevel == "debug" {
		level = logger.Info
	}

	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		// 一意制約違反を gorm.ErrDuplicatedKey にする
		TranslateError: true,
		Logger: logger.New(log.WithField("component", "gorm"), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
}

// Migrate はテーブルを作成・更新する。
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&model.Admin{},
		&model.Student{},
		&model.Canteen{},
		&model.MenuItem{},
		&model.DailySequence{},
		&model.Order{},
		&model.OrderItem{},
		&model.Notification{},
		&model.AuditLog{},
	)
}
