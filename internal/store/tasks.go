package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const taskColumns = "task_id, client_id, title, estimate, hidden, promoted, subscribed, favored, preferred, client_fee, state, kind, value, value_client, last_sync, last_activity, last_activity_by, flag"

// TaskExists reports whether a task with the id is stored.
func (s *Store) TaskExists(ctx context.Context, taskID int64) (bool, error) {
	found, err := s.exists(ctx, "SELECT COUNT(1) FROM tasks WHERE task_id = ?", taskID)
	if err != nil {
		return false, fmt.Errorf("check task %d: %w", taskID, err)
	}
	return found, nil
}

// InsertTask stores a new task. Unset optional fields are stored as NULL.
func (s *Store) InsertTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	var lastActivityBy any
	if task.LastActivityBy != nil {
		lastActivityBy = *task.LastActivityBy
	}
	var flag any
	if task.Flag != FlagUnset {
		flag = string(task.Flag)
	}
	_, err := s.db.ExecContext(ensureContext(ctx),
		`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.TaskID,
		task.ClientID,
		task.Title,
		boolToInt(task.Estimate),
		boolToInt(task.Hidden),
		boolToInt(task.Promoted),
		boolToInt(task.Subscribed),
		boolToInt(task.Favored),
		boolToInt(task.Preferred),
		task.ClientFee,
		task.State,
		task.Kind,
		task.Value,
		task.ValueClient,
		task.LastSync,
		nullableInt(task.LastActivity),
		lastActivityBy,
		flag,
	)
	if err != nil {
		return fmt.Errorf("insert task %d: %w", task.TaskID, err)
	}
	return nil
}

// UpdateTask merges the task into its stored row. LastActivity,
// LastActivityBy, and Flag are only written when set, so a previously stored
// value survives a sync that does not produce one.
func (s *Store) UpdateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	sets := []string{
		"client_id = ?", "title = ?", "estimate = ?", "hidden = ?", "promoted = ?",
		"subscribed = ?", "favored = ?", "preferred = ?", "client_fee = ?",
		"state = ?", "kind = ?", "value = ?", "value_client = ?", "last_sync = ?",
	}
	args := []any{
		task.ClientID,
		task.Title,
		boolToInt(task.Estimate),
		boolToInt(task.Hidden),
		boolToInt(task.Promoted),
		boolToInt(task.Subscribed),
		boolToInt(task.Favored),
		boolToInt(task.Preferred),
		task.ClientFee,
		task.State,
		task.Kind,
		task.Value,
		task.ValueClient,
		task.LastSync,
	}
	if task.LastActivity != nil {
		sets = append(sets, "last_activity = ?")
		args = append(args, *task.LastActivity)
	}
	if task.LastActivityBy != nil {
		sets = append(sets, "last_activity_by = ?")
		args = append(args, *task.LastActivityBy)
	}
	if task.Flag != FlagUnset {
		sets = append(sets, "flag = ?")
		args = append(args, string(task.Flag))
	}
	args = append(args, task.TaskID)

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE task_id = ?"
	if _, err := s.db.ExecContext(ensureContext(ctx), query, args...); err != nil {
		return fmt.Errorf("update task %d: %w", task.TaskID, err)
	}
	return nil
}

// MarkTasksLost moves every task in the given state to "lost", marks it
// hidden, and clears its other flags. It returns the number of rows changed.
func (s *Store) MarkTasksLost(ctx context.Context, state string) (int64, error) {
	res, err := s.db.ExecContext(ensureContext(ctx),
		`UPDATE tasks SET
			state = 'lost', estimate = 0, hidden = 1, promoted = 0,
			subscribed = 0, favored = 0, preferred = 0
		WHERE state = ?`,
		state,
	)
	if err != nil {
		return 0, fmt.Errorf("mark %s tasks lost: %w", state, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark %s tasks lost: rows affected: %w", state, err)
	}
	return affected, nil
}

// GetTask returns the stored task or nil when absent.
func (s *Store) GetTask(ctx context.Context, taskID int64) (*Task, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+taskColumns+" FROM tasks WHERE task_id = ?", taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", taskID, err)
	}
	return task, nil
}

// ListTasks returns stored tasks matching the filter, most recent activity first.
func (s *Store) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var (
		where []string
		args  []any
	)
	if filter.Flag != FlagUnset {
		where = append(where, "flag = ?")
		args = append(args, string(filter.Flag))
	}
	if state := strings.TrimSpace(filter.State); state != "" {
		where = append(where, "state = ?")
		args = append(args, state)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY COALESCE(last_activity, 0) DESC, task_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// CountTasksByFlag returns task counts keyed by flag; unflagged tasks are
// counted under FlagUnset.
func (s *Store) CountTasksByFlag(ctx context.Context) (map[Flag]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT COALESCE(flag, ''), COUNT(1) FROM tasks GROUP BY COALESCE(flag, '')")
	if err != nil {
		return nil, fmt.Errorf("count tasks by flag: %w", err)
	}
	defer rows.Close()

	counts := make(map[Flag]int)
	for rows.Next() {
		var (
			flag  string
			count int
		)
		if err := rows.Scan(&flag, &count); err != nil {
			return nil, fmt.Errorf("scan flag count: %w", err)
		}
		counts[Flag(flag)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flag counts: %w", err)
	}
	return counts, nil
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		task           Task
		estimate       int
		hidden         int
		promoted       int
		subscribed     int
		favored        int
		preferred      int
		lastActivity   sql.NullInt64
		lastActivityBy sql.NullString
		flag           sql.NullString
	)
	if err := scanner.Scan(
		&task.TaskID,
		&task.ClientID,
		&task.Title,
		&estimate,
		&hidden,
		&promoted,
		&subscribed,
		&favored,
		&preferred,
		&task.ClientFee,
		&task.State,
		&task.Kind,
		&task.Value,
		&task.ValueClient,
		&task.LastSync,
		&lastActivity,
		&lastActivityBy,
		&flag,
	); err != nil {
		return nil, err
	}
	task.Estimate = estimate != 0
	task.Hidden = hidden != 0
	task.Promoted = promoted != 0
	task.Subscribed = subscribed != 0
	task.Favored = favored != 0
	task.Preferred = preferred != 0
	if lastActivity.Valid {
		value := lastActivity.Int64
		task.LastActivity = &value
	}
	if lastActivityBy.Valid {
		value := lastActivityBy.String
		task.LastActivityBy = &value
	}
	task.Flag = Flag(flag.String)
	return &task, nil
}
