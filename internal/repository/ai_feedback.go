package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yogz/colist/internal/models"
)

type AIFeedbackRepository interface {
	Create(ctx context.Context, feedback models.AIFeedback) (models.AIFeedback, error)
	FindByEventID(ctx context.Context, eventID string) ([]models.AIFeedback, error)
}

type SQLiteAIFeedbackRepository struct {
	database *sql.DB
}

func NewAIFeedbackRepository(database *sql.DB) *SQLiteAIFeedbackRepository {
	return &SQLiteAIFeedbackRepository{database: database}
}

func (repository *SQLiteAIFeedbackRepository) Create(ctx context.Context, feedback models.AIFeedback) (models.AIFeedback, error) {
	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	feedback.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO ai_feedback (id, event_id, item_name, feedback, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		feedback.ID, feedback.EventID, feedback.ItemName, feedback.Feedback,
		feedback.Comment, feedback.CreatedAt,
	)
	if err != nil {
		return models.AIFeedback{}, fmt.Errorf("creating ai feedback: %w", err)
	}
	return feedback, nil
}

func (repository *SQLiteAIFeedbackRepository) FindByEventID(ctx context.Context, eventID string) ([]models.AIFeedback, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT id, event_id, item_name, feedback, comment, created_at
		FROM ai_feedback WHERE event_id = ? ORDER BY created_at DESC`, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding ai feedback: %w", err)
	}
	defer rows.Close()

	var entries []models.AIFeedback
	for rows.Next() {
		var entry models.AIFeedback
		if err := rows.Scan(
			&entry.ID, &entry.EventID, &entry.ItemName, &entry.Feedback,
			&entry.Comment, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ai feedback: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
