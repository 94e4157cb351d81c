package repository

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

var neo4jConstraints = []string{
	`CREATE CONSTRAINT symptom_name IF NOT EXISTS FOR (s:Symptom) REQUIRE s.name IS UNIQUE`,
	`CREATE CONSTRAINT disease_key IF NOT EXISTS FOR (d:Disease) REQUIRE d.key IS UNIQUE`,
	`CREATE CONSTRAINT medicine_key IF NOT EXISTS FOR (m:Medicine) REQUIRE m.key IS UNIQUE`,
}

const (
	clearGraphCypher = `
MATCH (n)
WHERE n:Symptom OR n:Disease OR n:Medicine
DETACH DELETE n`

	mergeSymptomsCypher = `
UNWIND $symptoms AS name
MERGE (:Symptom {name: name})`

	mergeDiseasesCypher = `
UNWIND $diseases AS row
MERGE (d:Disease {key: row.key})
ON CREATE SET d.name = row.name`

	mergeMedicinesCypher = `
UNWIND $medicines AS row
MERGE (m:Medicine {key: row.key})
ON CREATE SET m.name = row.name`

	mergeIndicatesCypher = `
UNWIND $edges AS e
MATCH (s:Symptom {name: e.from})
MATCH (d:Disease {key: e.to})
MERGE (s)-[:INDICATES]->(d)`

	mergeTreatedByCypher = `
UNWIND $edges AS e
MATCH (d:Disease {key: e.from})
MATCH (m:Medicine {key: e.to})
MERGE (d)-[:TREATED_BY]->(m)`

	findDiseasesCypher = `
MATCH (s:Symptom {name: $symptom})-[:INDICATES]->(d:Disease)
OPTIONAL MATCH (d)-[:TREATED_BY]->(m:Medicine)
WITH d, collect(DISTINCT m.name) AS medicines
RETURN d.name AS disease, medicines
ORDER BY disease`
)

// Neo4jStore keeps the graph in Neo4j as (:Symptom)-[:INDICATES]->(:Disease)
// -[:TREATED_BY]->(:Medicine). Sessions are opened per call.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jStore(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{driver: driver, database: database}
}

// OpenNeo4j creates a driver and verifies connectivity. Managed transactions
// get a single attempt; the driver's retry loop is disabled.
func OpenNeo4j(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(c *neo4j.Config) {
		c.MaxTransactionRetryTime = 0
	})
	if err != nil {
		return nil, domain.NewStoreError("connect", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, domain.NewStoreError("connect", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err))
	}
	return driver, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

// EnsureSchema creates uniqueness constraints. Schema changes cannot share a
// transaction with data writes, so each runs on its own.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range neo4jConstraints {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return domain.NewStoreError("ensure_schema", err)
		}
	}
	return nil
}

// Load deletes every lookup node and merges the new graph in one write
// transaction.
func (s *Neo4jStore) Load(ctx context.Context, rows []domain.Row) error {
	g, err := domain.BuildGraph(rows)
	if err != nil {
		return err
	}
	steps := loadSteps(g)

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range steps {
			res, err := tx.Run(ctx, st.cypher, st.params)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", st.name, err)
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, fmt.Errorf("%s: %w", st.name, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return domain.NewStoreError(opLoad, err)
	}
	return nil
}

func (s *Neo4jStore) FindDiseases(ctx context.Context, symptom string) ([]domain.Diagnosis, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, findDiseasesCypher, map[string]any{
			"symptom": domain.NormalizeSymptom(symptom),
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, domain.NewStoreError(opFindDiseases, err)
	}

	out := []domain.Diagnosis{}
	for _, rec := range records.([]*neo4j.Record) {
		d, err := diagnosisFromRecord(rec)
		if err != nil {
			return nil, domain.NewStoreError(opFindDiseases, err)
		}
		out = append(out, d)
	}
	domain.SortDiagnoses(out)
	return out, nil
}

func (s *Neo4jStore) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return domain.NewStoreError(opPing, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err))
	}
	return nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

type cypherStep struct {
	name   string
	cypher string
	params map[string]any
}

func loadSteps(g *domain.Graph) []cypherStep {
	symptoms := make([]any, 0, len(g.Symptoms))
	for _, n := range g.Symptoms {
		symptoms = append(symptoms, n.Name)
	}
	return []cypherStep{
		{"clear", clearGraphCypher, map[string]any{}},
		{"merge symptoms", mergeSymptomsCypher, map[string]any{"symptoms": symptoms}},
		{"merge diseases", mergeDiseasesCypher, map[string]any{"diseases": nodeParams(g.Diseases)}},
		{"merge medicines", mergeMedicinesCypher, map[string]any{"medicines": nodeParams(g.Medicines)}},
		{"merge indicates", mergeIndicatesCypher, map[string]any{"edges": edgeParams(g.Indicates)}},
		{"merge treated_by", mergeTreatedByCypher, map[string]any{"edges": edgeParams(g.TreatedBy)}},
	}
}

func nodeParams(nodes []*domain.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, map[string]any{"key": n.Key, "name": n.Name})
	}
	return out
}

func edgeParams(edges []domain.Edge) []any {
	out := make([]any, 0, len(edges))
	for _, e := range edges {
		out = append(out, map[string]any{"from": e.From, "to": e.To})
	}
	return out
}

func diagnosisFromRecord(rec *neo4j.Record) (domain.Diagnosis, error) {
	raw, ok := rec.Get("disease")
	if !ok {
		return domain.Diagnosis{}, fmt.Errorf("record missing disease")
	}
	disease, ok := raw.(string)
	if !ok {
		return domain.Diagnosis{}, fmt.Errorf("disease is %T, want string", raw)
	}

	var meds []string
	if v, ok := rec.Get("medicines"); ok && v != nil {
		list, ok := v.([]any)
		if !ok {
			return domain.Diagnosis{}, fmt.Errorf("medicines is %T, want list", v)
		}
		for _, m := range list {
			if str, ok := m.(string); ok {
				meds = append(meds, str)
			}
		}
	}
	return domain.NewDiagnosis(disease, meds), nil
}
