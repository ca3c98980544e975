package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/budeshi/budeshi/internal/db"
	"github.com/budeshi/budeshi/internal/domain"
	"github.com/google/uuid"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
// Insertion order is the autoincrement seq column.
type SQLiteProjectRepo struct {
	db  *sql.DB
	uow db.UnitOfWork
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(database *sql.DB) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: database, uow: db.NewSQLiteUnitOfWork(database)}
}

// WithUnitOfWork swaps the transaction runner used by Import and SeedIfEmpty.
func (r *SQLiteProjectRepo) WithUnitOfWork(uow db.UnitOfWork) *SQLiteProjectRepo {
	r.uow = uow
	return r
}

const projectColumns = `id, name, description, status, budget, spent, location, ministry, contractor, start_date, end_date`

func (r *SQLiteProjectRepo) All(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return scanProjects(rows)
}

func (r *SQLiteProjectRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Search ranks in SQL: exact id first, then seq. lower() in SQLite only folds
// ASCII, which covers the dataset's identifiers and names.
func (r *SQLiteProjectRepo) Search(ctx context.Context, term string) ([]domain.Project, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return r.All(ctx)
	}
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE instr(lower(id), ?1) > 0
		   OR instr(lower(name), ?1) > 0
		   OR instr(lower(description), ?1) > 0
		   OR instr(lower(contractor), ?1) > 0
		   OR instr(lower(location), ?1) > 0
		ORDER BY CASE WHEN lower(id) = ?1 THEN 0 ELSE 1 END, seq`
	rows, err := r.db.QueryContext(ctx, query, needle)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	return scanProjects(rows)
}

// Add inserts p. An empty ID is filled with a fresh UUID.
func (r *SQLiteProjectRepo) Add(ctx context.Context, p *domain.Project) error {
	return insertProject(ctx, r.db, p)
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, status = ?, budget = ?, spent = ?,
			location = ?, ministry = ?, contractor = ?, start_date = ?, end_date = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Status, p.Budget, p.Spent,
		p.Location, p.Ministry, p.Contractor, p.StartDateString(), p.EndDateString(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return requireAffected(res, p.ID)
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireAffected(res, id)
}

func (r *SQLiteProjectRepo) Count(ctx context.Context) (int, error) {
	return countProjects(ctx, r.db)
}

// Import inserts projects in one transaction. Any failure leaves the store
// unchanged.
func (r *SQLiteProjectRepo) Import(ctx context.Context, projects []domain.Project) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		for i := range projects {
			p := projects[i]
			if err := insertProject(ctx, tx, &p); err != nil {
				return fmt.Errorf("importing project %d: %w", i, err)
			}
		}
		return nil
	})
}

// SeedIfEmpty imports seed only when the projects table has no rows. It
// reports whether anything was inserted.
func (r *SQLiteProjectRepo) SeedIfEmpty(ctx context.Context, seed []domain.Project) (bool, error) {
	seeded := false
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		n, err := countProjects(ctx, tx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for i := range seed {
			p := seed[i]
			if err := insertProject(ctx, tx, &p); err != nil {
				return fmt.Errorf("seeding project %q: %w", p.ID, err)
			}
		}
		seeded = len(seed) > 0
		return nil
	})
	return seeded, err
}

func insertProject(ctx context.Context, q db.DBTX, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Status, p.Budget, p.Spent,
		p.Location, p.Ministry, p.Contractor, p.StartDateString(), p.EndDateString(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project %q: %w", p.ID, ErrDuplicateID)
		}
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func countProjects(ctx context.Context, q db.DBTX) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*domain.Project, error) {
	var p domain.Project
	var start, end string
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Budget, &p.Spent,
		&p.Location, &p.Ministry, &p.Contractor, &start, &end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	if p.StartDate, err = domain.ParseDate(start); err != nil {
		return nil, err
	}
	if p.EndDate, err = domain.ParseDate(end); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProjects(rows *sql.Rows) ([]domain.Project, error) {
	defer rows.Close()
	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}
