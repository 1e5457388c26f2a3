package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type ClickhouseOptions struct {
	Addr     string
	Database string
	Username string
	Password string
}

func ConnectClickhouse(ctx context.Context, opts ClickhouseOptions, logger *log.Logger) (driver.Conn, error) {
	var conn driver.Conn
	var err error

	for i := 1; i <= connectAttempts; i++ {
		conn, err = clickhouse.Open(&clickhouse.Options{
			Addr: []string{opts.Addr},
			Auth: clickhouse.Auth{
				Database: opts.Database,
				Username: opts.Username,
				Password: opts.Password,
			},
			ClientInfo: clickhouse.ClientInfo{
				Products: []struct {
					Name    string
					Version string
				}{
					{Name: "bas-server", Version: "1.0"},
				},
			},
		})

		if err == nil {
			err = conn.Ping(ctx)
			if err == nil {
				logger.Println("Connected to ClickHouse!")
				return conn, nil
			}
		}

		logger.Printf("Attempt %d: ClickHouse not ready: %v", i, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}

	return nil, fmt.Errorf("could not connect to ClickHouse after multiple attempts: %w", err)
}

// MigrateClickhouse applies the migrations found at sourceURL, e.g.
// file://./migrations/analytics.
func MigrateClickhouse(opts ClickhouseOptions, sourceURL string) error {
	dbURL := fmt.Sprintf("clickhouse://%s:%s@%s/%s?x-multi-statement=true",
		url.QueryEscape(opts.Username), url.QueryEscape(opts.Password), opts.Addr, opts.Database)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("migration init error: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}
