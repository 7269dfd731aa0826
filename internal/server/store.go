package server

import (
	"context"
	"fmt"

	"planboard/internal/config"
	"planboard/internal/model"
	"planboard/internal/repository"
	"planboard/internal/repository/mongodb"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stores struct {
	tasks   repository.TaskRepositoryInterface
	boards  repository.BoardRepositoryInterface
	cards   repository.CardRepositoryInterface
	authors repository.AuthorRepositoryInterface
}

// openStores connects to the backend named by STORE_DRIVER. Mongo is the default.
func openStores(ctx context.Context, cfg *config.Config) (stores, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case "", config.DriverMongo:
		return openMongo(ctx, cfg)
	case config.DriverPostgres:
		return openPostgres(cfg)
	default:
		return stores{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config) (stores, func(context.Context) error, error) {
	client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return stores{}, nil, fmt.Errorf("❌ failed to connect to MongoDB: %w", err)
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return stores{}, nil, err
	}
	log.WithField("database", cfg.MongoDatabase).Info("✅ Connected to MongoDB")

	return stores{
		tasks:   mongodb.NewTaskRepository(db),
		boards:  mongodb.NewBoardRepository(db),
		cards:   mongodb.NewCardRepository(db),
		authors: mongodb.NewAuthorRepository(db),
	}, client.Disconnect, nil
}

func openPostgres(cfg *config.Config) (stores, func(context.Context) error, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return stores{}, nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	if err := db.AutoMigrate(&model.Author{}, &model.Board{}, &model.Task{}, &model.Card{}); err != nil {
		return stores{}, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("✅ Connected to database")

	closeDB := func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return stores{
		tasks:   repository.NewTaskRepository(db),
		boards:  repository.NewBoardRepository(db),
		cards:   repository.NewCardRepository(db),
		authors: repository.NewAuthorRepository(db),
	}, closeDB, nil
}
