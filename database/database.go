package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/internal/logger"
	"github.com/lshigami/quizmaster/internal/model"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open connects to the configured store. TranslateError is on so unique
// violations surface as gorm.ErrDuplicatedKey on both drivers.
func Open(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(slowQueryThreshold),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// A single writer avoids "database is locked" under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// NewDatabase provides the *gorm.DB to the fx graph and closes it on shutdown.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed")
		return nil, err
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			log.Info().Msg("Closing database connection...")
			return sqlDB.Close()
		},
	})
	return db, nil
}

// Migrate creates the schema and the partial unique index that allows a single
// in-progress submission per (user, quiz).
func Migrate(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.Submission{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}

	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_one_in_progress
		ON submissions (user_id, quiz_id) WHERE submitted_at IS NULL`).Error
	if err != nil {
		log.Error().Err(err).Msg("Failed to create in-progress submission index")
		return err
	}

	log.Info().Msg("Database migration completed successfully.")
	return nil
}
