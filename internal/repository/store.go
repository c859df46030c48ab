package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate record")
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrMissingReference reports a write that points at a row that no longer exists.
	ErrMissingReference = errors.New("referenced record not found")
)

// Filter narrows List results. Keys of Where must be allow-listed columns.
type Filter struct {
	Where  map[string]any
	Limit  int
	Offset int
}

// Store is the CRUD surface every resource repository exposes.
type Store[T any] interface {
	Create(ctx context.Context, item *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	Update(ctx context.Context, id string, item *T) error
	Delete(ctx context.Context, id string) error
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Table describes how an entity maps onto a Postgres table.
// Columns excludes id, created_at and updated_at, which the store manages.
type Table[T any] struct {
	Name       string
	Columns    []string
	Filterable []string
	OrderBy    string

	ID     func(*T) *string
	Values func(*T) []any
	Stamps func(*T) (created, updated *time.Time)
	// Scan reads id, Columns..., created_at, updated_at in that order.
	Scan func(rowScanner, *T) error
}

type sqlStore[T any] struct {
	db    *sql.DB
	table Table[T]
}

// NewStore returns a Store backed by db for the described table.
func NewStore[T any](db *sql.DB, table Table[T]) Store[T] {
	return &sqlStore[T]{db: db, table: table}
}

func (s *sqlStore[T]) selectColumns() string {
	cols := make([]string, 0, len(s.table.Columns)+3)
	cols = append(cols, "id")
	cols = append(cols, s.table.Columns...)
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

func (s *sqlStore[T]) Create(ctx context.Context, item *T) error {
	cols := append([]string{"id"}, s.table.Columns...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING created_at, updated_at`,
		s.table.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	args := append([]any{*s.table.ID(item)}, s.table.Values(item)...)
	created, updated := s.table.Stamps(item)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(created, updated)
	return translate(err)
}

func (s *sqlStore[T]) GetByID(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, s.selectColumns(), s.table.Name)
	var item T
	if err := s.table.Scan(s.db.QueryRowContext(ctx, query, id), &item); err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *sqlStore[T]) List(ctx context.Context, filter Filter) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, s.selectColumns(), s.table.Name)

	args := make([]any, 0, len(filter.Where)+2)
	argPos := 1
	if len(filter.Where) > 0 {
		conds := make([]string, 0, len(filter.Where))
		// Iterate the allow-list rather than the map so the query text is stable.
		for _, col := range s.table.Filterable {
			v, ok := filter.Where[col]
			if !ok {
				continue
			}
			conds = append(conds, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
		if len(conds) != len(filter.Where) {
			return nil, ErrInvalidFilter
		}
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	if s.table.OrderBy != "" {
		query += " ORDER BY " + s.table.OrderBy
	}
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		var item T
		if err := s.table.Scan(rows, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *sqlStore[T]) Update(ctx context.Context, id string, item *T) error {
	sets := make([]string, len(s.table.Columns))
	for i, col := range s.table.Columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	idPos := len(s.table.Columns) + 1
	query := fmt.Sprintf(
		`UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d RETURNING created_at, updated_at`,
		s.table.Name, strings.Join(sets, ", "), idPos,
	)

	args := append(s.table.Values(item), id)
	created, updated := s.table.Stamps(item)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(created, updated); err != nil {
		return translate(err)
	}
	*s.table.ID(item) = id
	return nil
}

func (s *sqlStore[T]) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table.Name), id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	case pgerrcode.ForeignKeyViolation:
		// The referenced row is gone, e.g. the owner deleted their account.
		return fmt.Errorf("%w: %s", ErrMissingReference, pqErr.Constraint)
	case pgerrcode.InvalidTextRepresentation:
		// A malformed key cannot match any row.
		return ErrNotFound
	}
	return err
}
