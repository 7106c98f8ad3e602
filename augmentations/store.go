package augmentations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/augmentations-api/apperror"
)

const pgUniqueViolation = "23505"

// Repository abstracts augmentation persistence.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Augmentation, int, error)
	Get(ctx context.Context, id int) (*Augmentation, error)
	Create(ctx context.Context, aug *Augmentation) (*Augmentation, error)
	Update(ctx context.Context, id int, req *UpdateAugmentationRequest) (*Augmentation, error)
	Delete(ctx context.Context, id int) error
	BulkInsert(ctx context.Context, augs []Augmentation) error
}

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const augmentationColumns = `id, name, type, area, activation, energy_rate, description, created_at, updated_at`

func scanAugmentation(row pgx.Row, aug *Augmentation) error {
	return row.Scan(
		&aug.ID,
		&aug.Name,
		&aug.Type,
		&aug.Area,
		&aug.Activation,
		&aug.EnergyRate,
		&aug.Description,
		&aug.CreatedAt,
		&aug.UpdatedAt,
	)
}

// List returns one page of augmentations ordered by name, plus the
// total row count for pagination.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]Augmentation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM augmentations`).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count augmentations", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM augmentations ORDER BY name LIMIT $1 OFFSET $2`, augmentationColumns)
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list augmentations", err)
	}
	defer rows.Close()

	items := make([]Augmentation, 0, limit)
	for rows.Next() {
		var aug Augmentation
		if err := scanAugmentation(rows, &aug); err != nil {
			return nil, 0, apperror.NewDatabaseError("failed to scan augmentation", err)
		}
		items = append(items, aug)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to read augmentations", err)
	}

	return items, total, nil
}

// Get fetches one augmentation by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int) (*Augmentation, error) {
	var aug Augmentation
	query := fmt.Sprintf(`SELECT %s FROM augmentations WHERE id = $1`, augmentationColumns)
	if err := scanAugmentation(r.pool.QueryRow(ctx, query, id), &aug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("augmentation with ID %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get augmentation", err)
	}
	return &aug, nil
}

// Create inserts an augmentation. A duplicate name maps to a
// ConflictError.
func (r *PostgresRepository) Create(ctx context.Context, aug *Augmentation) (*Augmentation, error) {
	query := `INSERT INTO augmentations (name, type, area, activation, energy_rate, description)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		aug.Name, aug.Type, aug.Area, aug.Activation, aug.EnergyRate, aug.Description,
	).Scan(&aug.ID, &aug.CreatedAt, &aug.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError(fmt.Sprintf("augmentation '%s' already exists", aug.Name), nil)
		}
		return nil, apperror.NewDatabaseError("failed to create augmentation", err)
	}
	return aug, nil
}

// Update applies the non-nil fields of req to the augmentation and
// returns the updated row. With no fields set it returns the row
// unchanged.
func (r *PostgresRepository) Update(ctx context.Context, id int, req *UpdateAugmentationRequest) (*Augmentation, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if req.Name != nil {
		appendSet("name", *req.Name)
	}
	if req.Type != nil {
		appendSet("type", *req.Type)
	}
	if req.Area != nil {
		appendSet("area", *req.Area)
	}
	if req.Activation != nil {
		appendSet("activation", *req.Activation)
	}
	if req.EnergyRate != nil {
		appendSet("energy_rate", *req.EnergyRate)
	}
	if req.Description != nil {
		appendSet("description", *req.Description)
	}

	if len(setClauses) == 0 {
		return r.Get(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE augmentations SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argID, augmentationColumns)

	var aug Augmentation
	if err := scanAugmentation(r.pool.QueryRow(ctx, query, args...), &aug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("augmentation with ID %d not found", id), nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError(fmt.Sprintf("augmentation '%s' already exists", *req.Name), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update augmentation", err)
	}
	return &aug, nil
}

// Delete removes an augmentation by ID; deleting a missing row is a
// NotFoundError.
func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM augmentations WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete augmentation", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("augmentation with ID %d not found", id), nil)
	}
	return nil
}

// BulkInsert inserts all augmentations in a single transaction: either
// every row lands or none do. A duplicate name anywhere in the batch
// rolls the whole import back with a ConflictError.
func (r *PostgresRepository) BulkInsert(ctx context.Context, augs []Augmentation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperror.NewDatabaseError("failed to begin import transaction", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO augmentations (name, type, area, activation, energy_rate, description)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	for _, aug := range augs {
		if _, err := tx.Exec(ctx, query,
			aug.Name, aug.Type, aug.Area, aug.Activation, aug.EnergyRate, aug.Description,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return apperror.NewConflictError(fmt.Sprintf("augmentation '%s' already exists", aug.Name), nil)
			}
			return apperror.NewDatabaseError("failed to import augmentations", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewDatabaseError("failed to commit import transaction", err)
	}
	return nil
}
