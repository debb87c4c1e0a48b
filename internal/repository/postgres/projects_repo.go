package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub/taskhub-backend/internal/models"
	repo "github.com/taskhub/taskhub-backend/internal/repository"
)

type projectsRepo struct{ pool *pgxpool.Pool }

const projectCols = `id, name, description, owner_id, start_date, end_date, created_at, updated_at`

func (r *projectsRepo) Create(ctx context.Context, p models.Project) (models.Project, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO projects(id, name, description, owner_id, start_date, end_date, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, p.Description, p.OwnerID, p.StartDate, p.EndDate, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return models.Project{}, translate(err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *projectsRepo) GetByID(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	err := r.pool.QueryRow(ctx,
		`SELECT `+projectCols+` FROM projects WHERE id=$1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Project{}, translate(err)
	}
	return p, nil
}

func (r *projectsRepo) List(ctx context.Context) ([]models.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectCols+` FROM projects ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *projectsRepo) Update(ctx context.Context, p models.Project) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET name=$2, description=$3, owner_id=$4, start_date=$5, end_date=$6, updated_at=$7 WHERE id=$1`,
		p.ID, p.Name, p.Description, p.OwnerID, p.StartDate, p.EndDate, p.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *projectsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *projectsRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE owner_id=$1`, ownerID).Scan(&n)
	return n, err
}
