package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Config selects and locates the relational store.
type Config struct {
	Driver   string
	Filename string
	DSN      string
	Debug    bool
}

// Storage owns the single shared connection. Close releases it at most once.
type Storage struct {
	DB *gorm.DB

	logger    logrus.FieldLogger
	closeOnce sync.Once
	closeErr  error
}

// New opens the store, verifies the connection and migrates the blog schema before returning.
func New(logger logrus.FieldLogger, cfg Config) (*Storage, error) {
	logger.WithField("driver", cfg.Driver).Info("initialising database")

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(logger, cfg.Debug),
		// surfaces gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated from driver specific errors
		TranslateError: true,
	})
	if err != nil {
		logger.WithError(err).Error("error while opening database")
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	var storage = &Storage{DB: db, logger: logger}

	// opening the DB will fail silently when the sqlite driver is compiled without CGO_ENABLED
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if err = migrate(db); err != nil {
		logger.WithError(err).Error("error while building database schema")
		_ = storage.Close()
		return nil, err
	}

	return storage, nil
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.Filename == "" {
			return nil, errors.New("sqlite database filename is required")
		}
		if err := ensureDirectory(cfg.Filename); err != nil {
			return nil, err
		}
		return gormsqlite.Open(getConnectionString(cfg.Filename)), nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, errors.New("postgres DSN is required")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// ensureDirectory creates the folder hosting the database file when it doesn't exist
func ensureDirectory(filename string) error {
	var dir = filepath.Dir(filename)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating database directory %q: %w", dir, err)
	}
	return nil
}

// getConnectionString enables foreign keys constraints, without which no cascade takes place, on every pooled connection
func getConnectionString(path string) string {
	return path + "?_fk=on&_busy_timeout=5000"
}

func newGormLogger(logger logrus.FieldLogger, debug bool) gormlogger.Interface {
	var level = gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// Close releases the connection pool. Later calls return the outcome of the first one.
func (s *Storage) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Debug("database stopping")
		sqlDB, err := s.DB.DB()
		if err != nil {
			s.closeErr = err
			return
		}
		s.closeErr = sqlDB.Close()
	})
	return s.closeErr
}
