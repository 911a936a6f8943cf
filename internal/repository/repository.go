package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MATTHEWPURBA/management-system/internal/authz"
	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

// Store is the pgx-backed repository. Mutations that carry an activity
// entry run in one transaction, so an unwritable audit trail rolls the
// business change back.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const userColumns = `id, name, email, password_hash, role, active, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, service.ErrNotFound
	}
	return user, err
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count)
	return count, err
}

func (s *Store) CreateUser(ctx context.Context, user model.User, entry model.ActivityLogEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash, role, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.Active)
		if err != nil {
			return mapUserError(err)
		}
		return insertLog(ctx, tx, entry)
	})
}

func (s *Store) UpdateUser(ctx context.Context, user model.User, entry model.ActivityLogEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET name = $1, email = $2, password_hash = $3, role = $4, active = $5, updated_at = now()
			WHERE id = $6
		`, user.Name, user.Email, user.PasswordHash, user.Role, user.Active, user.ID)
		if err != nil {
			return mapUserError(err)
		}
		if tag.RowsAffected() == 0 {
			return service.ErrNotFound
		}
		return insertLog(ctx, tx, entry)
	})
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID, entry model.ActivityLogEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		// Tasks cascade via their foreign keys; activity_log rows keep a
		// nulled actor via ON DELETE SET NULL.
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return service.ErrNotFound
		}
		return insertLog(ctx, tx, entry)
	})
}

const taskColumns = `
	t.id, t.title, t.description, t.status, t.due_date, t.assigned_to, t.created_by,
	t.created_at, t.updated_at,
	coalesce(a.name, ''), coalesce(a.role, ''), coalesce(c.name, '')
`

const taskJoins = `
	FROM tasks t
	LEFT JOIN users a ON a.id = t.assigned_to
	LEFT JOIN users c ON c.id = t.created_by
`

func scanTaskDetail(row pgx.Row) (model.TaskDetail, error) {
	var detail model.TaskDetail
	err := row.Scan(
		&detail.ID,
		&detail.Title,
		&detail.Description,
		&detail.Status,
		&detail.DueDate,
		&detail.AssignedTo,
		&detail.CreatedBy,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.AssigneeName,
		&detail.AssigneeRole,
		&detail.CreatorName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TaskDetail{}, service.ErrNotFound
	}
	return detail, err
}

func (s *Store) TaskByID(ctx context.Context, id uuid.UUID) (model.TaskDetail, error) {
	return scanTaskDetail(s.pool.QueryRow(ctx, `SELECT `+taskColumns+taskJoins+` WHERE t.id = $1`, id))
}

func (s *Store) ListTasks(ctx context.Context, scope authz.TaskScope) ([]model.TaskDetail, error) {
	query := `SELECT ` + taskColumns + taskJoins
	var args []any
	switch {
	case scope.All:
	case scope.CreatedBy != nil:
		// Must mirror the single-task view rule for managers.
		query += ` WHERE t.created_by = $1 OR a.role = 'staff'`
		args = append(args, *scope.CreatedBy)
	case scope.AssignedTo != nil:
		query += ` WHERE t.assigned_to = $1`
		args = append(args, *scope.AssignedTo)
	default:
		return nil, fmt.Errorf("empty task scope")
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.TaskDetail
	for rows.Next() {
		detail, err := scanTaskDetail(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, detail)
	}
	return tasks, rows.Err()
}

func (s *Store) OverdueTasks(ctx context.Context, today time.Time) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, status, due_date, assigned_to, created_by, created_at, updated_at
		FROM tasks
		WHERE due_date < $1 AND status != 'done'
		ORDER BY due_date
	`, time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var task model.Task
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.DueDate,
			&task.AssignedTo,
			&task.CreatedBy,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) CreateTask(ctx context.Context, task model.Task, entry model.ActivityLogEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO tasks (id, title, description, status, due_date, assigned_to, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		`, task.ID, task.Title, task.Description, task.Status, task.DueDate, task.AssignedTo, task.CreatedBy)
		if err != nil {
			return err
		}
		return insertLog(ctx, tx, entry)
	})
}

func (s *Store) UpdateTask(ctx context.Context, task model.Task, entry model.ActivityLogEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE tasks
			SET title = $1, description = $2, status = $3, due_date = $4, assigned_to = $5, updated_at = now()
			WHERE id = $6
		`, task.Title, task.Description, task.Status, task.DueDate, task.AssignedTo, task.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return service.ErrNotFound
		}
		return insertLog(ctx, tx, entry)
	})
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID, entry model.ActivityLogEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return service.ErrNotFound
		}
		return insertLog(ctx, tx, entry)
	})
}

func (s *Store) AppendLog(ctx context.Context, entry model.ActivityLogEntry) error {
	return insertLog(ctx, s.pool, entry)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertLog(ctx context.Context, q execer, entry model.ActivityLogEntry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO activity_log (id, user_id, action, description, logged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, entry.ID, entry.UserID, entry.Action, entry.Description, entry.LoggedAt)
	return err
}

func (s *Store) ListLogs(ctx context.Context, filter service.LogFilter, limit, offset int) ([]model.ActivityLogEntry, int64, error) {
	where := ` WHERE 1=1`
	var args []any
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(` AND logged_at >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(` AND logged_at <= $%d`, len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where += fmt.Sprintf(` AND action = $%d`, len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM activity_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, action, description, logged_at, created_at
		FROM activity_log
		%s
		ORDER BY logged_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.ActivityLogEntry
	for rows.Next() {
		var entry model.ActivityLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Description,
			&entry.LoggedAt,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

func mapUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return service.ErrDuplicateEmail
	}
	return err
}
