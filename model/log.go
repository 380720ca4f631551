package model

import (
	"github.com/Laisky/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/common/helper"
	"github.com/chatpp/relay/common/logger"
)

// AuditDB records applied charges when AUDIT_DB_PATH is configured. Nil when
// auditing is disabled.
var AuditDB *gorm.DB

// ChargeLog is one applied charge. PreviousPoints is the balance before the
// decrement, as reported by the store, so reconciliation can detect floored
// charges (PreviousPoints < Amount).
type ChargeLog struct {
	Id             int    `gorm:"primaryKey"`
	AccountId      string `gorm:"index"`
	ModelName      string
	Kind           string
	Amount         int64
	PreviousPoints int64
	CreatedAt      int64 `gorm:"index"`
}

func InitAuditDB() error {
	if config.AuditDBPath == "" {
		logger.Logger.Info("AUDIT_DB_PATH not set, charge audit log disabled")
		return nil
	}
	db, err := gorm.Open(sqlite.Open(config.AuditDBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(&ChargeLog{}); err != nil {
		return err
	}
	AuditDB = db
	logger.Logger.Info("charge audit log enabled", zap.String("path", config.AuditDBPath))
	return nil
}

// RecordCharge is best-effort: a failed audit write is logged, never surfaced
// to the caller, and never blocks the response.
func RecordCharge(plan ChargePlan, modelName string, previousPoints int64) {
	if AuditDB == nil {
		return
	}
	entry := &ChargeLog{
		AccountId:      plan.AccountId,
		ModelName:      modelName,
		Kind:           string(plan.Kind),
		Amount:         plan.Amount,
		PreviousPoints: previousPoints,
		CreatedAt:      helper.GetTimestamp(),
	}
	if err := AuditDB.Create(entry).Error; err != nil {
		logger.Logger.Error("failed to record charge",
			zap.String("account", plan.AccountId),
			zap.Error(err))
	}
}
