// Package repository provides data access for game records and user stats.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"board-game-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrRecordNotFound = errors.New("game record not found")
	ErrStatsNotFound  = errors.New("user stats not found")
)

// RecordRepository persists finished-game records.
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository creates a new RecordRepository instance.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// Save inserts a finished game and returns the assigned id.
func (r *RecordRepository) Save(ctx context.Context, rec *model.GameRecord) (int64, error) {
	const query = `
		INSERT INTO game_records
			(game_type, player1_id, player2_id, group_id, winner_id,
			 start_time, end_time, moves_count, game_data, is_ai_game)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		rec.GameType,
		rec.Player1ID,
		rec.Player2ID,
		rec.GroupID,
		rec.WinnerID,
		rec.StartTime,
		rec.EndTime,
		rec.MovesCount,
		rec.GameData,
		rec.IsAIGame,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save game record: %w", err)
	}
	return id, nil
}

// GetByID retrieves a game record. Returns ErrRecordNotFound if absent.
func (r *RecordRepository) GetByID(ctx context.Context, id int64) (*model.GameRecord, error) {
	const query = `
		SELECT id, game_type, player1_id, player2_id, group_id, winner_id,
		       start_time, end_time, moves_count, game_data, is_ai_game
		FROM game_records
		WHERE id = $1
	`

	var rec model.GameRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.GameType,
		&rec.Player1ID,
		&rec.Player2ID,
		&rec.GroupID,
		&rec.WinnerID,
		&rec.StartTime,
		&rec.EndTime,
		&rec.MovesCount,
		&rec.GameData,
		&rec.IsAIGame,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get game record: %w", err)
	}
	return &rec, nil
}

// ListByGroup returns the most recent records for a group, newest first.
func (r *RecordRepository) ListByGroup(ctx context.Context, groupID string, limit int) ([]*model.GameRecord, error) {
	const query = `
		SELECT id, game_type, player1_id, player2_id, group_id, winner_id,
		       start_time, end_time, moves_count, game_data, is_ai_game
		FROM game_records
		WHERE group_id = $1
		ORDER BY end_time DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list game records: %w", err)
	}
	defer rows.Close()

	var records []*model.GameRecord
	for rows.Next() {
		var rec model.GameRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.GameType,
			&rec.Player1ID,
			&rec.Player2ID,
			&rec.GroupID,
			&rec.WinnerID,
			&rec.StartTime,
			&rec.EndTime,
			&rec.MovesCount,
			&rec.GameData,
			&rec.IsAIGame,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
