// Package repository archives postage quotes in MySQL through gorm.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

const (
	serviceName = "mysql"

	errDuplicateEntry = 1062

	slowQueryThreshold = 200 * time.Millisecond
)

// Open connects to the database described by cfg and applies the pool
// settings. parseTime is forced on so DATETIME columns scan into time.Time.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn, err := mysqldriver.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database DSN: %w", err)
	}

	dsn.ParseTime = true
	if dsn.Loc == nil {
		dsn.Loc = time.UTC
	}

	db, err := gorm.Open(mysql.Open(dsn.FormatDSN()), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(slogWriter{logger: logger}, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Info("database connected", slog.String("addr", dsn.Addr), slog.String("database", dsn.DBName))

	return db, nil
}

// slogWriter feeds gorm log lines into slog.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Warn(fmt.Sprintf(format, args...), slog.String("component", "gorm"))
}

// GormRepository implements ports.QuoteRepository.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a repository on db.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the postage_quotes table.
func (r *GormRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&quoteModel{}); err != nil {
		return fmt.Errorf("migrating postage_quotes: %w", err)
	}

	return nil
}

// Save implements ports.QuoteRepository.
func (r *GormRepository) Save(ctx context.Context, quote *domain.PostageQuote) error {
	model, err := toModel(quote)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, quote.ID)
	}

	return nil
}

// FindByID implements ports.QuoteRepository.
func (r *GormRepository) FindByID(ctx context.Context, id string) (*domain.PostageQuote, error) {
	var model quoteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, id)
	}

	return toDomain(&model)
}

// Name implements ports.HealthChecker.
func (r *GormRepository) Name() string { return serviceName }

// Check implements ports.HealthChecker.
func (r *GormRepository) Check(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func translateError(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError("postage quote", id)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewConflictError("postage quote", id+" already exists")
	}

	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry {
		return domain.NewConflictError("postage quote", id+" already exists")
	}

	return fmt.Errorf("%w: %w", domain.NewUnavailableError(serviceName, ""), err)
}
