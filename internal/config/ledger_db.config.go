package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DatabaseURL builds the postgres DSN from DB_* variables. DATABASE_URL,
// when set, wins.
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "ledger"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func ConnectDB(logger *zap.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = int32(getEnvInt("DB_MAX_CONNS", 20))
	config.MinConns = int32(getEnvInt("DB_MIN_CONNS", 2))
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 5 * time.Minute

	var dbpool *pgxpool.Pool
	maxRetries := 5
	delay := 2 * time.Second

	for i := 1; i <= maxRetries; i++ {
		logger.Info("connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", maxRetries))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		dbpool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = dbpool.Ping(ctx); err == nil {
				cancel()
				logger.Info("database connected")
				return dbpool, nil
			}
			dbpool.Close()
			err = fmt.Errorf("ping failed: %w", err)
		}
		cancel()

		logger.Warn("database connection failed", zap.Error(err))

		if i < maxRetries {
			logger.Info("retrying database connection", zap.Duration("delay", delay))
			time.Sleep(delay)
			delay *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect to DB after %d attempts: %w", maxRetries, err)
}
