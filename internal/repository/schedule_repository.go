package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/model"
)

// ScheduleRepository manages term schedules in the database.
type ScheduleRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewScheduleRepository(pool *pgxpool.Pool, logger *zap.Logger) *ScheduleRepository {
	return &ScheduleRepository{
		pool:   pool,
		logger: logger,
	}
}

const scheduleColumns = `id, user_id, name, term_label, is_active, created_at, updated_at`

// Create inserts a new schedule.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}

	query := `
		INSERT INTO schedules (id, user_id, name, term_label, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		schedule.ID,
		schedule.UserID,
		schedule.Name,
		schedule.TermLabel,
		schedule.IsActive,
	).Scan(&schedule.CreatedAt, &schedule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}

	return nil
}

// GetByID returns one schedule, or nil when it does not exist.
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`

	schedule, err := scanSchedule(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule by id: %w", err)
	}

	return schedule, nil
}

// GetByUser returns all schedules of a user, newest first.
func (r *ScheduleRepository) GetByUser(ctx context.Context, userID int64) ([]*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get schedules by user: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}

// GetActive returns the user's single active schedule, or nil when none is
// active.
func (r *ScheduleRepository) GetActive(ctx context.Context, userID int64) (*model.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE user_id = $1 AND is_active = true LIMIT 1`

	schedule, err := scanSchedule(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active schedule: %w", err)
	}

	return schedule, nil
}

// ListActive returns every active schedule across all users. Used by the
// background scheduler for nightly resyncs and reminder polling.
func (r *ScheduleRepository) ListActive(ctx context.Context) ([]*model.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE is_active = true ORDER BY user_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}

// SetActive activates one schedule and deactivates every other schedule of
// the same user in one transaction, keeping the at-most-one-active invariant.
func (r *ScheduleRepository) SetActive(ctx context.Context, userID int64, scheduleID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("set active schedule: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE schedules SET is_active = false, updated_at = now() WHERE user_id = $1 AND is_active = true`,
		userID,
	); err != nil {
		return fmt.Errorf("set active schedule: deactivate: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE schedules SET is_active = true, updated_at = now() WHERE id = $1 AND user_id = $2`,
		scheduleID, userID,
	)
	if err != nil {
		return fmt.Errorf("set active schedule: activate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set active schedule: schedule %s not found for user %d", scheduleID, userID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("set active schedule: commit: %w", err)
	}

	r.logger.Info("Active schedule switched",
		zap.Int64("user_id", userID),
		zap.String("schedule_id", scheduleID.String()),
	)

	return nil
}

// Delete removes a schedule; its courses go with it via cascade.
func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

func scanSchedule(row rowScanner) (*model.Schedule, error) {
	schedule := &model.Schedule{}
	err := row.Scan(
		&schedule.ID,
		&schedule.UserID,
		&schedule.Name,
		&schedule.TermLabel,
		&schedule.IsActive,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}
