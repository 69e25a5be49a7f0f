package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/repository"
)

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository implementation
func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("settings_repo").Error("failed to get setting %s: %v", key, err)
		return "", false, errors.Wrapf(err, "get setting %s", key)
	}
	return value, true, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("setting %s=%s", key, value)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, key, value, utcNow())
	if err != nil {
		log.Error("failed to set %s: %v", key, err)
		return errors.Wrapf(err, "set setting %s", key)
	}
	return nil
}
