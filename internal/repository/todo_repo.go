package repository

import (
	"context"
	"errors"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) Create(ctx context.Context, t *domain.Todo) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO todos (owner_id, title, description, completed, deadline, priority)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		t.OwnerID, t.Title, t.Description, t.Completed, t.Deadline, t.Priority,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, owner_id, title, description, completed, deadline, priority, created_at, updated_at
		 FROM todos
		 WHERE id = $1`,
		id,
	)
	var t domain.Todo
	if err := scanTodo(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGTodoRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Todo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, title, description, completed, deadline, priority, created_at, updated_at
		 FROM todos
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Todo
	for rows.Next() {
		var t domain.Todo
		if err := scanTodo(rows, &t); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *PGTodoRepo) Update(ctx context.Context, t *domain.Todo) error {
	err := r.db.QueryRow(ctx,
		`UPDATE todos
		 SET title = $2, description = $3, completed = $4, deadline = $5, priority = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		t.ID, t.Title, t.Description, t.Completed, t.Deadline, t.Priority,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PGTodoRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTodo(row pgx.Row, t *domain.Todo) error {
	return row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&t.Deadline,
		&t.Priority,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
