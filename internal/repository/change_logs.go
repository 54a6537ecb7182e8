package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yogz/colist/internal/models"
)

type ChangeLogRepository interface {
	Create(ctx context.Context, entry models.ChangeLog) (models.ChangeLog, error)
	FindRecent(ctx context.Context, limit int) ([]models.ChangeLog, error)
	FindByRecord(ctx context.Context, tableName, recordID string) ([]models.ChangeLog, error)
}

type SQLiteChangeLogRepository struct {
	database *sql.DB
}

func NewChangeLogRepository(database *sql.DB) *SQLiteChangeLogRepository {
	return &SQLiteChangeLogRepository{database: database}
}

const changeLogColumns = `id, action, table_name, record_id, old_data, new_data, user_ip, user_agent, referer, created_at`

func (repository *SQLiteChangeLogRepository) Create(ctx context.Context, entry models.ChangeLog) (models.ChangeLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO change_logs (id, action, table_name, record_id, old_data, new_data, user_ip, user_agent, referer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, entry.TableName, entry.RecordID, entry.OldData, entry.NewData,
		entry.UserIP, entry.UserAgent, entry.Referer, entry.CreatedAt,
	)
	if err != nil {
		return models.ChangeLog{}, fmt.Errorf("creating change log: %w", err)
	}
	return entry, nil
}

func (repository *SQLiteChangeLogRepository) FindRecent(ctx context.Context, limit int) ([]models.ChangeLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+changeLogColumns+` FROM change_logs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("finding change logs: %w", err)
	}
	defer rows.Close()
	return scanChangeLogs(rows)
}

func (repository *SQLiteChangeLogRepository) FindByRecord(ctx context.Context, tableName, recordID string) ([]models.ChangeLog, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+changeLogColumns+` FROM change_logs WHERE table_name = ? AND record_id = ? ORDER BY created_at DESC`,
		tableName, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding change logs by record: %w", err)
	}
	defer rows.Close()
	return scanChangeLogs(rows)
}

func scanChangeLogs(rows *sql.Rows) ([]models.ChangeLog, error) {
	var entries []models.ChangeLog
	for rows.Next() {
		var entry models.ChangeLog
		if err := rows.Scan(
			&entry.ID, &entry.Action, &entry.TableName, &entry.RecordID, &entry.OldData,
			&entry.NewData, &entry.UserIP, &entry.UserAgent, &entry.Referer, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning change log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
