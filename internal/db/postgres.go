package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/envutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := envutil.String("POSTGRES_HOST", "localhost")
	postgresPort := envutil.String("POSTGRES_PORT", "5432")
	postgresUser := envutil.String("POSTGRES_USER", "postgres")
	postgresPassword := envutil.String("POSTGRES_PASSWORD", "")
	postgresName := envutil.String("POSTGRES_NAME", "cardiobridge")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&domain.User{},
		&domain.Prediction{},
		&domain.AlertEvent{},
		&domain.HealthProfile{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	if err := s.db.Exec(`
		ALTER TABLE "prediction"
		ADD CONSTRAINT "fk_prediction_user_id"
		FOREIGN KEY ("user_id")
		REFERENCES "user"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		s.log.Warn("fk_prediction_user_id not added (may already exist)", "error", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "health_profile"
		ADD CONSTRAINT "fk_health_profile_user_id"
		FOREIGN KEY ("user_id")
		REFERENCES "user"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		s.log.Warn("fk_health_profile_user_id not added (may already exist)", "error", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
