package client

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/config"
	"marketplace-api/internal/model"

	"golang.org/x/sync/singleflight"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	CodeNotConnected    = "NOT_CONNECTED"
	CodeConnectionError = "CONNECTION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeQueryError      = "QUERY_ERROR"
)

// QueryResult is the outcome of DBClient.Query. Failures are reported here
// instead of panicking so the caller can decide whether to fall back.
type QueryResult struct {
	Success bool
	Error   error
	Code    string
}

func (r QueryResult) Err() error {
	if r.Success {
		return nil
	}
	return r.Error
}

// DBClient owns the process-wide connection pool. Build one in main and
// share it; never construct one per request.
type DBClient struct {
	driver         string
	dsn            string
	connectTimeout time.Duration
	autoMigrate    bool
	logger         *slog.Logger

	mu    sync.RWMutex
	db    *gorm.DB
	group singleflight.Group
}

func NewDBClient(cfg *config.Database, logger *slog.Logger) *DBClient {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &DBClient{
		driver:         cfg.Driver,
		dsn:            cfg.URL,
		connectTimeout: timeout,
		autoMigrate:    cfg.AutoMigrate,
		logger:         logger,
	}
}

func dialector(driverName, dsn string) (gorm.Dialector, error) {
	switch driverName {
	case "postgres", "":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driverName)
}

func (c *DBClient) current() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

func (c *DBClient) Connected() bool {
	return c.current() != nil
}

// Connect establishes the pool, or reuses it if already open. Concurrent
// callers share a single attempt.
func (c *DBClient) Connect(ctx context.Context) error {
	if c.current() != nil {
		return nil
	}

	ch := c.group.DoChan("connect", func() (any, error) {
		return nil, c.connect()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return &apperror.ConnectionError{Op: "connect", Err: ctx.Err()}
	}
}

func (c *DBClient) connect() error {
	if c.current() != nil {
		return nil
	}

	dial, err := dialector(c.driver, c.dsn)
	if err != nil {
		return &apperror.ConnectionError{Op: "connect", Err: err}
	}

	db, err := gorm.Open(dial, &gorm.Config{
		DisableAutomaticPing: true,
		NamingStrategy:       model.Naming{},
		Logger:               logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return &apperror.ConnectionError{Op: "open", Err: err}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return &apperror.ConnectionError{Op: "open", Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.connectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		c.logger.Error("database unreachable", "driver", c.driver, "error", err)
		return &apperror.ConnectionError{Op: "ping", Err: err}
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if c.autoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
			sqlDB.Close()
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	c.mu.Lock()
	c.db = db
	c.mu.Unlock()

	c.logger.Info("database connected", "driver", c.driver)
	return nil
}

// Disconnect releases the pool. Calling it on a closed client is a no-op.
func (c *DBClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	sqlDB, err := c.db.DB()
	c.db = nil
	if err != nil {
		return err
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("database disconnected", "driver", c.driver)
	return nil
}

// Query runs fn against the live pool, connecting first if needed.
func (c *DBClient) Query(ctx context.Context, fn func(db *gorm.DB) error) (res QueryResult) {
	if err := c.Connect(ctx); err != nil {
		return QueryResult{Error: err, Code: CodeNotConnected}
	}

	db := c.current()
	if db == nil {
		return QueryResult{Error: &apperror.ConnectionError{Op: "query", Err: errors.New("disconnected")}, Code: CodeNotConnected}
	}

	defer func() {
		if r := recover(); r != nil {
			res = QueryResult{Error: fmt.Errorf("query panicked: %v", r), Code: CodeQueryError}
		}
	}()

	err := fn(db.WithContext(ctx))
	switch {
	case err == nil:
		return QueryResult{Success: true}
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, apperror.ErrNotFound):
		return QueryResult{Error: fmt.Errorf("%w: %w", apperror.ErrNotFound, err), Code: CodeNotFound}
	case isConnectionLoss(err):
		c.logger.Warn("database connection lost", "driver", c.driver, "error", err)
		return QueryResult{Error: &apperror.ConnectionError{Op: "query", Err: err}, Code: CodeConnectionError}
	}

	return QueryResult{Error: err, Code: CodeQueryError}
}

// Transaction runs fn inside a single database transaction.
func (c *DBClient) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) QueryResult {
	return c.Query(ctx, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

func isConnectionLoss(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
