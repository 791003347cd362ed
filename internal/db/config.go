package db

import (
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Credentials holds the MySQL connection settings. Never log them.
type Credentials struct {
	Host     string
	Port     string
	User     string
	Password string
	Timeout  time.Duration
}

// DSN builds the driver connection string. Timeout bounds the dial and
// every read and write on the connection.
func (c Credentials) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, c.Port)
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
		cfg.ReadTimeout = c.Timeout
		cfg.WriteTimeout = c.Timeout
	}
	return cfg.FormatDSN()
}

// String describes the target without secrets
func (c Credentials) String() string {
	return c.User + "@" + net.JoinHostPort(c.Host, c.Port)
}
