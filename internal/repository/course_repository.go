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

// CourseRepository manages course rules in the database. The core never
// mutates rules; edits here always replace whole rows.
type CourseRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewCourseRepository(pool *pgxpool.Pool, logger *zap.Logger) *CourseRepository {
	return &CourseRepository{
		pool:   pool,
		logger: logger,
	}
}

const courseColumns = `id, schedule_id, name, teacher_name, location, weekday_ordinal, start_slot, slot_span, active_weeks, created_at, updated_at`

// Create inserts a new course rule.
func (r *CourseRepository) Create(ctx context.Context, course *model.CourseRule) error {
	query := `
		INSERT INTO courses (schedule_id, name, teacher_name, location, weekday_ordinal, start_slot, slot_span, active_weeks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		course.ScheduleID,
		course.Name,
		course.TeacherName,
		course.Location,
		course.WeekdayOrdinal,
		course.StartSlot,
		course.SlotSpan,
		weeksToDB(course.ActiveWeeks),
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID returns one course rule, or nil when it does not exist.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.CourseRule, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return course, nil
}

// GetBySchedule returns all course rules of a schedule in stable display
// order.
func (r *CourseRepository) GetBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*model.CourseRule, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE schedule_id = $1
		ORDER BY weekday_ordinal, start_slot, name
	`

	rows, err := r.pool.Query(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("get courses by schedule: %w", err)
	}
	defer rows.Close()

	var courses []*model.CourseRule
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

// Update replaces the mutable fields of a course rule.
func (r *CourseRepository) Update(ctx context.Context, course *model.CourseRule) error {
	query := `
		UPDATE courses
		SET name = $2, teacher_name = $3, location = $4, weekday_ordinal = $5,
		    start_slot = $6, slot_span = $7, active_weeks = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		course.ID,
		course.Name,
		course.TeacherName,
		course.Location,
		course.WeekdayOrdinal,
		course.StartSlot,
		course.SlotSpan,
		weeksToDB(course.ActiveWeeks),
	).Scan(&course.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	return nil
}

// Delete removes one course rule.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// DeleteBySchedule removes all course rules of a schedule.
func (r *CourseRepository) DeleteBySchedule(ctx context.Context, scheduleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return fmt.Errorf("delete courses by schedule: %w", err)
	}
	return nil
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(row rowScanner) (*model.CourseRule, error) {
	course := &model.CourseRule{}
	var weeks []int32

	err := row.Scan(
		&course.ID,
		&course.ScheduleID,
		&course.Name,
		&course.TeacherName,
		&course.Location,
		&course.WeekdayOrdinal,
		&course.StartSlot,
		&course.SlotSpan,
		&weeks,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	course.ActiveWeeks = weeksFromDB(weeks)
	return course, nil
}

func weeksToDB(weeks []int) []int32 {
	out := make([]int32, len(weeks))
	for i, w := range weeks {
		out[i] = int32(w)
	}
	return out
}

func weeksFromDB(weeks []int32) []int {
	out := make([]int, len(weeks))
	for i, w := range weeks {
		out[i] = int(w)
	}
	return out
}
