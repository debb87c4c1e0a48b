package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub/taskhub-backend/internal/models"
	repo "github.com/taskhub/taskhub-backend/internal/repository"
)

type tasksRepo struct{ pool *pgxpool.Pool }

const taskCols = `id, title, description, status, priority, due_date, project_id, created_at, updated_at`

func (r *tasksRepo) Create(ctx context.Context, t models.Task) (models.Task, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO tasks(id, title, description, status, priority, due_date, project_id, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.ProjectID, t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return insertAssignees(ctx, tx, t.ID, t.AssigneeIDs)
	})
	if err != nil {
		return models.Task{}, translate(err)
	}
	return r.GetByID(ctx, t.ID)
}

func (r *tasksRepo) GetByID(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	err := r.pool.QueryRow(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE id=$1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, translate(err)
	}
	if t.AssigneeIDs, err = r.assignees(ctx, t.ID); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (r *tasksRepo) List(ctx context.Context) ([]models.Task, error) {
	return r.list(ctx, `SELECT `+taskCols+` FROM tasks ORDER BY created_at DESC LIMIT 200`)
}

func (r *tasksRepo) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return r.list(ctx, `SELECT `+taskCols+` FROM tasks WHERE project_id=$1 ORDER BY created_at DESC`, projectID)
}

func (r *tasksRepo) list(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].AssigneeIDs, err = r.assignees(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update rewrites the task row and its assignee relation in one transaction.
func (r *tasksRepo) Update(ctx context.Context, t models.Task) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE tasks SET title=$2, description=$3, status=$4, priority=$5, due_date=$6, updated_at=$7 WHERE id=$1`,
			t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM task_assignees WHERE task_id=$1`, t.ID); err != nil {
			return err
		}
		return insertAssignees(ctx, tx, t.ID, t.AssigneeIDs)
	})
	return translate(err)
}

func (r *tasksRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *tasksRepo) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id=$1`, projectID).Scan(&n)
	return n, err
}

func (r *tasksRepo) CountByAssignee(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM task_assignees WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

func (r *tasksRepo) assignees(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM task_assignees WHERE task_id=$1 ORDER BY user_id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertAssignees(ctx context.Context, tx pgx.Tx, taskID string, userIDs []string) error {
	for _, uid := range userIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO task_assignees(task_id, user_id) VALUES($1,$2)`, taskID, uid); err != nil {
			return err
		}
	}
	return nil
}
