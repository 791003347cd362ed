// Package inventory enumerates the user databases of a MySQL server along
// with their table count and on-disk size.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/sykell/herd-inventory/internal/db"
)

// ErrUnavailable wraps failures to reach or enumerate the server
var ErrUnavailable = errors.New("database server unavailable")

// SystemSchemas are server-internal schemas never reported as user databases
var SystemSchemas = []string{"information_schema", "mysql", "performance_schema", "sys"}

// Catalog is the metadata surface the collector reads from
type Catalog interface {
	ServerVersion(ctx context.Context) (string, error)
	Databases(ctx context.Context) ([]string, error)
	CountTables(ctx context.Context, name string) (int, error)
	SizeBytes(ctx context.Context, name string) (float64, error)
	Close() error
}

// Opener establishes the single connection used by one inventory pass
type Opener func(ctx context.Context, creds db.Credentials) (Catalog, error)

// OpenMySQL is the default Opener
func OpenMySQL(ctx context.Context, creds db.Credentials) (Catalog, error) {
	catalog, err := db.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Collector performs inventory passes against a database server
type Collector struct {
	open    Opener
	exclude map[string]struct{}
}

// NewCollector creates a collector. A nil opener connects to MySQL.
func NewCollector(open Opener) *Collector {
	if open == nil {
		open = OpenMySQL
	}

	exclude := make(map[string]struct{}, len(SystemSchemas))
	for _, name := range SystemSchemas {
		exclude[name] = struct{}{}
	}

	return &Collector{open: open, exclude: exclude}
}

// Collect connects once, enumerates non-system databases and measures each
// of them. Connection or enumeration failures return an empty, usable
// Inventory together with an error wrapping ErrUnavailable. Failures on a
// single database default its metric to zero and are recorded in Warnings.
func (c *Collector) Collect(ctx context.Context, creds db.Credentials) (*Inventory, error) {
	inv := newInventory()

	catalog, err := c.open(ctx, creds)
	if err != nil {
		return inv, fmt.Errorf("%w: %s: %v", ErrUnavailable, creds, err)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}()

	if version, err := catalog.ServerVersion(ctx); err != nil {
		inv.warn("server version: %v", err)
	} else {
		inv.ServerVersion = version
	}

	names, err := catalog.Databases(ctx)
	if err != nil {
		return inv, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, name := range names {
		if _, skip := c.exclude[name]; skip {
			continue
		}
		inv.add(c.measure(ctx, catalog, name, inv))
	}

	return inv, nil
}

func (c *Collector) measure(ctx context.Context, catalog Catalog, name string, inv *Inventory) DatabaseRecord {
	record := DatabaseRecord{Name: name}

	tables, err := catalog.CountTables(ctx, name)
	if err != nil {
		inv.warn("table count of %s: %v", name, err)
	} else {
		record.TableCount = tables
	}

	size, err := catalog.SizeBytes(ctx, name)
	if err != nil {
		inv.warn("size of %s: %v", name, err)
	} else {
		record.SizeMB = BytesToMB(size)
	}

	return record
}

// BytesToMB converts bytes to megabytes rounded to 2 decimal places
func BytesToMB(bytes float64) float64 {
	if bytes <= 0 {
		return 0
	}
	return math.Round(bytes/1024/1024*100) / 100
}
