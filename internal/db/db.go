package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultTimeout = 5 * time.Second

// Catalog is a read-only view of a MySQL server's schema metadata. It owns
// exactly one connection, so USE statements stick between calls.
type Catalog struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	timeout time.Duration
}

// Open connects to the server described by creds and verifies the
// connection with a bounded ping.
func Open(ctx context.Context, creds Credentials) (*Catalog, error) {
	dialector := mysql.New(mysql.Config{
		DSN:                       creds.DSN(),
		SkipInitializeWithVersion: true,
	})
	return openCatalog(ctx, dialector, creds.Timeout)
}

func openCatalog(ctx context.Context, dialector gorm.Dialector, timeout time.Duration) (*Catalog, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:               gormLogger,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Catalog{db: gdb, sqlDB: sqlDB, timeout: timeout}, nil
}

// ServerVersion returns the server's version string
func (c *Catalog) ServerVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var version string
	if err := c.db.WithContext(ctx).Raw("SELECT VERSION()").Scan(&version).Error; err != nil {
		return "", fmt.Errorf("failed to query server version: %w", err)
	}
	return version, nil
}

// Databases lists every database visible to the connected user, in server order
func (c *Catalog) Databases(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var names []string
	if err := c.db.WithContext(ctx).Raw("SHOW DATABASES").Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return names, nil
}

// CountTables switches the connection to name and counts its tables
func (c *Catalog) CountTables(ctx context.Context, name string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tx := c.db.WithContext(ctx)
	if err := tx.Exec("USE " + quoteIdentifier(name)).Error; err != nil {
		return 0, fmt.Errorf("failed to select database %s: %w", name, err)
	}

	var tables []string
	if err := tx.Raw("SHOW TABLES").Scan(&tables).Error; err != nil {
		return 0, fmt.Errorf("failed to list tables of %s: %w", name, err)
	}
	return len(tables), nil
}

// SizeBytes sums data and index length of every table in name. A database
// without size metadata reports 0.
func (c *Catalog) SizeBytes(ctx context.Context, name string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var size sql.NullFloat64
	err := c.db.WithContext(ctx).
		Raw("SELECT SUM(data_length + index_length) AS size FROM information_schema.tables WHERE table_schema = ?", name).
		Scan(&size).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute size of %s: %w", name, err)
	}
	if !size.Valid {
		return 0, nil
	}
	return size.Float64, nil
}

// Close releases the connection
func (c *Catalog) Close() error {
	return c.sqlDB.Close()
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
