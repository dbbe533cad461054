package connection

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/wolfhost/botpanel-backend/internal/logger"
	"github.com/wolfhost/botpanel-backend/pkg/infrastructure/postgres/schemas"
)

func Init(
	postgresUser string,
	postgresHost string,
	postgresPassword string,
	postgresDatabase string,
	postgresPort string,
) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s TimeZone=UTC",
		postgresHost,
		postgresUser,
		postgresPassword,
		postgresDatabase,
		postgresPort)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		logger.Error("Failed to connect to postgres database", zap.Error(err))
		return nil, err
	}

	err = db.AutoMigrate(&schemas.Deployment{})
	if err != nil {
		logger.Error("Failed to auto migrate DB schemas", zap.Error(err))
		return nil, err
	}

	return db, nil
}
