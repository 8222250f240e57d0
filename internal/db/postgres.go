package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smaro-ai/agent-backend/internal/history"
	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/utils"
)

// NewPostgresOpener builds the per-load opener the relational history
// store uses. The chat table lives in the product database and is owned by
// the product backend; this service never migrates or writes it, it only
// opens a connection, reads the conversation window, and closes again.
func NewPostgresOpener(log *logger.Logger) history.OpenDB {
	openerLog := log.With("service", "PostgresOpener")

	openerLog.Info("Loading environment variables...")
	host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	name := utils.GetEnv("POSTGRES_NAME", "smaro", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	return func() (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			openerLog.Error("Failed to connect to Postgres", "error", err)
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return db, nil
	}
}
