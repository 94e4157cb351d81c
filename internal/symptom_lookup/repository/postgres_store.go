package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

// DBPool is the subset of pgxpool.Pool used by PostgresStore.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS symptoms (
    name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS diseases (
    key  TEXT PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS medicines (
    key  TEXT PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS symptom_indicates (
    symptom     TEXT NOT NULL REFERENCES symptoms(name) ON DELETE CASCADE,
    disease_key TEXT NOT NULL REFERENCES diseases(key) ON DELETE CASCADE,
    PRIMARY KEY (symptom, disease_key)
);
CREATE TABLE IF NOT EXISTS disease_treated_by (
    disease_key  TEXT NOT NULL REFERENCES diseases(key) ON DELETE CASCADE,
    medicine_key TEXT NOT NULL REFERENCES medicines(key) ON DELETE CASCADE,
    PRIMARY KEY (disease_key, medicine_key)
);`

const (
	truncateSQL = `TRUNCATE symptom_indicates, disease_treated_by, symptoms, diseases, medicines`

	insertSymptomsSQL = `
INSERT INTO symptoms (name)
SELECT unnest($1::text[])
ON CONFLICT DO NOTHING`

	insertDiseasesSQL = `
INSERT INTO diseases (key, name)
SELECT * FROM unnest($1::text[], $2::text[])
ON CONFLICT (key) DO NOTHING`

	insertMedicinesSQL = `
INSERT INTO medicines (key, name)
SELECT * FROM unnest($1::text[], $2::text[])
ON CONFLICT (key) DO NOTHING`

	insertIndicatesSQL = `
INSERT INTO symptom_indicates (symptom, disease_key)
SELECT * FROM unnest($1::text[], $2::text[])
ON CONFLICT DO NOTHING`

	insertTreatedBySQL = `
INSERT INTO disease_treated_by (disease_key, medicine_key)
SELECT * FROM unnest($1::text[], $2::text[])
ON CONFLICT DO NOTHING`

	findDiseasesSQL = `
SELECT d.name,
       COALESCE(array_agg(m.name ORDER BY m.name) FILTER (WHERE m.name IS NOT NULL), '{}') AS medicines
FROM symptom_indicates si
JOIN diseases d ON d.key = si.disease_key
LEFT JOIN disease_treated_by dt ON dt.disease_key = d.key
LEFT JOIN medicines m ON m.key = dt.medicine_key
WHERE si.symptom = $1
GROUP BY d.key, d.name
ORDER BY d.name`
)

// PostgresStore keeps the graph as node and edge tables.
type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tables when they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return domain.NewStoreError("ensure_schema", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, rows []domain.Row) error {
	g, err := domain.BuildGraph(rows)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.NewStoreError(opLoad, fmt.Errorf("begin: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	symptoms := nodeNames(g.Symptoms)
	diseaseKeys, diseaseNames := nodeColumns(g.Diseases)
	medicineKeys, medicineNames := nodeColumns(g.Medicines)
	indFrom, indTo := edgeColumns(g.Indicates)
	tbFrom, tbTo := edgeColumns(g.TreatedBy)

	steps := []struct {
		name string
		sql  string
		args []any
	}{
		{"truncate", truncateSQL, nil},
		{"insert symptoms", insertSymptomsSQL, []any{symptoms}},
		{"insert diseases", insertDiseasesSQL, []any{diseaseKeys, diseaseNames}},
		{"insert medicines", insertMedicinesSQL, []any{medicineKeys, medicineNames}},
		{"insert indicates", insertIndicatesSQL, []any{indFrom, indTo}},
		{"insert treated_by", insertTreatedBySQL, []any{tbFrom, tbTo}},
	}
	for _, st := range steps {
		if _, err := tx.Exec(ctx, st.sql, st.args...); err != nil {
			return domain.NewStoreError(opLoad, fmt.Errorf("%s: %w", st.name, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.NewStoreError(opLoad, fmt.Errorf("commit: %w", err))
	}
	committed = true
	return nil
}

func (s *PostgresStore) FindDiseases(ctx context.Context, symptom string) ([]domain.Diagnosis, error) {
	rows, err := s.pool.Query(ctx, findDiseasesSQL, domain.NormalizeSymptom(symptom))
	if err != nil {
		return nil, domain.NewStoreError(opFindDiseases, err)
	}
	defer rows.Close()

	out := []domain.Diagnosis{}
	for rows.Next() {
		var (
			disease   string
			medicines []string
		)
		if err := rows.Scan(&disease, &medicines); err != nil {
			return nil, domain.NewStoreError(opFindDiseases, fmt.Errorf("scan: %w", err))
		}
		out = append(out, domain.NewDiagnosis(disease, medicines))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(opFindDiseases, err)
	}

	domain.SortDiagnoses(out)
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return domain.NewStoreError(opPing, s.pool.Ping(ctx))
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func nodeNames(nodes []*domain.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func nodeColumns(nodes []*domain.Node) (keys, names []string) {
	keys = make([]string, 0, len(nodes))
	names = make([]string, 0, len(nodes))
	for _, n := range nodes {
		keys = append(keys, n.Key)
		names = append(names, n.Name)
	}
	return keys, names
}

func edgeColumns(edges []domain.Edge) (from, to []string) {
	from = make([]string, 0, len(edges))
	to = make([]string, 0, len(edges))
	for _, e := range edges {
		from = append(from, e.From)
		to = append(to, e.To)
	}
	return from, to
}
