package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const connectTimeout = 5 * time.Second

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MaxOpenConns defaults to 25 when zero.
	MaxOpenConns int
}

// DSN renders the lib/pq keyword/value form. Values are quoted so passwords
// may contain spaces and quotes.
func (c PostgresConfig) DSN() string {
	pairs := []struct{ key, value string }{
		{"host", c.Host},
		{"port", c.Port},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.DBName},
		{"sslmode", c.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		parts = append(parts, p.key+"="+quoteDSN(p.value))
	}
	return strings.Join(parts, " ")
}

func quoteDSN(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// URL renders the postgres:// form golang-migrate expects.
func (c PostgresConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// NewPostgresDB opens a pool and pings it before returning.
func NewPostgresDB(ctx context.Context, cfg PostgresConfig) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres at %s: %w", net.JoinHostPort(cfg.Host, cfg.Port), err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(max(maxOpen/5, 1))
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
