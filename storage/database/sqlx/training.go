package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/core/training"
)

// orderingColumns maps orderable fields to SQL expressions over the class document.
var orderingColumns = map[string]string{
	"name":      "lower(doc ->> 'name')",
	"type":      "lower(doc ->> 'type')",
	"level":     "doc ->> 'level'",
	"location":  "lower(doc ->> 'location')",
	"price":     "(doc ->> 'price')::numeric",
	"trainer":   "trainer",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type classRow struct {
	ID        string         `db:"id"`
	Trainer   string         `db:"trainer"`
	Version   int            `db:"version"`
	Doc       types.JSONText `db:"doc"`
	CreatedAt sql.NullTime   `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
}

// trainingRepository keeps each TrainingClass as one JSONB document,
// so an aggregate (sessions and rosters included) is written atomically.
type trainingRepository struct {
	db *sqlx.DB
}

var _ training.Repository = (*trainingRepository)(nil) // interface compliance check

func NewTrainingRepository(db *sqlx.DB) training.Repository {
	return &trainingRepository{db: db}
}

func (repo trainingRepository) marshal(tc training.TrainingClass) (classRow, error) {
	doc, err := json.Marshal(tc)
	if err != nil {
		return classRow{}, errors.Wrap(err, "marshaling training class")
	}
	return classRow{
		ID:        tc.ID,
		Trainer:   tc.Trainer,
		Version:   tc.Version,
		Doc:       types.JSONText(doc),
		CreatedAt: sql.NullTime{Time: tc.CreatedAt.UTC(), Valid: !tc.CreatedAt.IsZero()},
		UpdatedAt: sql.NullTime{Time: tc.UpdatedAt.UTC(), Valid: !tc.UpdatedAt.IsZero()},
	}, nil
}

func (repo trainingRepository) unmarshal(row classRow) (training.TrainingClass, error) {
	var tc training.TrainingClass
	if err := row.Doc.Unmarshal(&tc); err != nil {
		return training.TrainingClass{}, errors.Wrap(err, "unmarshaling training class")
	}
	// columns are the source of truth for the concurrency token
	tc.ID = row.ID
	tc.Version = row.Version
	return tc, nil
}

// trapNoRowsErr maps psql "no rows" err to training.ErrNotFound
func (repo trainingRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return training.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo trainingRepository) CreateClass(ctx context.Context, tc training.TrainingClass) (training.TrainingClass, error) {
	tc.ID = uuid.New().String()
	tc.Version = 1
	row, err := repo.marshal(tc)
	if err != nil {
		return training.TrainingClass{}, err
	}

	q := `INSERT INTO training_class (id, trainer, version, doc, created_at, updated_at)
		VALUES (:id, :trainer, :version, :doc, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return training.TrainingClass{}, errors.Wrap(err, "inserting training class")
	}
	return tc, nil
}

func (repo trainingRepository) GetClass(ctx context.Context, id string) (training.TrainingClass, error) {
	if _, err := uuid.Parse(id); err != nil {
		return training.TrainingClass{}, training.ErrNotFound
	}

	var row classRow
	q := `SELECT id, trainer, version, doc, created_at, updated_at FROM training_class WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return training.TrainingClass{}, repo.trapNoRowsErr(err, "finding training class by ID")
	}
	return repo.unmarshal(row)
}

func (repo trainingRepository) QueryClasses(
	ctx context.Context,
	filter *training.QueryFilter,
	ordering []core.DBOrdering,
) ([]training.TrainingClass, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Trainer != "" {
			where = append(where, "trainer = "+arg(filter.Trainer))
		}
		if filter.Level != "" {
			where = append(where, "doc ->> 'level' = "+arg(filter.Level))
		}
		if filter.Type != "" {
			where = append(where, "lower(doc ->> 'type') = lower("+arg(filter.Type)+")")
		}
		// classes with Name, Type or Location matching the search keyword
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			where = append(where, fmt.Sprintf(
				"(doc ->> 'name' ILIKE %[1]s OR doc ->> 'type' ILIKE %[1]s OR doc ->> 'location' ILIKE %[1]s)", p))
		}
	}

	q := `SELECT id, trainer, version, doc, created_at, updated_at FROM training_class`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	orderList := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if col, ok := orderingColumns[ord.Field]; ok {
			orderList = append(orderList, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(orderList) == 0 {
		orderList = append(orderList, "created_at DESC")
	}
	q += " ORDER BY " + strings.Join(orderList, ", ")

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying training classes")
	}

	classes := make([]training.TrainingClass, 0, len(rows))
	for _, row := range rows {
		tc, err := repo.unmarshal(row)
		if err != nil {
			return nil, err
		}
		classes = append(classes, tc)
	}
	return classes, nil
}

func (repo trainingRepository) SaveClass(ctx context.Context, tc training.TrainingClass) (training.TrainingClass, error) {
	expected := tc.Version
	tc.Version++
	row, err := repo.marshal(tc)
	if err != nil {
		return training.TrainingClass{}, err
	}

	q := `UPDATE training_class
		SET trainer = $1, version = $2, doc = $3, updated_at = $4
		WHERE id = $5 AND version = $6`
	res, err := repo.db.ExecContext(ctx, q, row.Trainer, row.Version, row.Doc, row.UpdatedAt, row.ID, expected)
	if err != nil {
		return training.TrainingClass{}, errors.Wrap(err, "updating training class")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return training.TrainingClass{}, errors.Wrap(err, "updating training class")
	}
	if cnt == 0 {
		// either gone or stale
		if _, err = repo.GetClass(ctx, tc.ID); err != nil {
			return training.TrainingClass{}, err
		}
		return training.TrainingClass{}, training.ErrConflict
	}
	return tc, nil
}

func (repo trainingRepository) DeleteClass(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return training.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM training_class WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting training class")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting training class")
	}
	if cnt == 0 {
		return training.ErrNotFound
	}
	return nil
}
