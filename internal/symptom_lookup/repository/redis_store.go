package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

const defaultRedisPrefix = "symptomfinder"

// RedisStore keeps the graph as Redis sets:
//
//	{prefix}:symptom:{name}   set of disease keys
//	{prefix}:disease:{key}    set of medicine keys
//	{prefix}:disease_names    hash disease key -> display name
//	{prefix}:medicine_names   hash medicine key -> display name
//	{prefix}:keys             every key written by the last load
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisClient builds a client with command retries disabled; a failed
// round trip surfaces as a store error on the first attempt.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         db,
		MaxRetries: -1,
	})
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) symptomKey(name string) string { return s.prefix + ":symptom:" + name }
func (s *RedisStore) diseaseKey(key string) string  { return s.prefix + ":disease:" + key }
func (s *RedisStore) diseaseNames() string          { return s.prefix + ":disease_names" }
func (s *RedisStore) medicineNames() string         { return s.prefix + ":medicine_names" }
func (s *RedisStore) indexKey() string              { return s.prefix + ":keys" }

// Load clears the previous graph and writes the new one in one MULTI/EXEC.
// The index key is watched so a concurrent load aborts instead of interleaving.
func (s *RedisStore) Load(ctx context.Context, rows []domain.Row) error {
	g, err := domain.BuildGraph(rows)
	if err != nil {
		return err
	}

	txf := func(tx *redis.Tx) error {
		old, err := tx.SMembers(ctx, s.indexKey()).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("read key index: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			stale := append(old, s.indexKey(), s.diseaseNames(), s.medicineNames())
			pipe.Del(ctx, stale...)

			written := []any{s.diseaseNames(), s.medicineNames()}
			for _, e := range g.Indicates {
				k := s.symptomKey(e.From)
				pipe.SAdd(ctx, k, e.To)
				written = append(written, k)
			}
			for _, e := range g.TreatedBy {
				k := s.diseaseKey(e.From)
				pipe.SAdd(ctx, k, e.To)
				written = append(written, k)
			}
			for _, d := range g.Diseases {
				pipe.HSet(ctx, s.diseaseNames(), d.Key, d.Name)
			}
			for _, m := range g.Medicines {
				pipe.HSet(ctx, s.medicineNames(), m.Key, m.Name)
			}
			pipe.SAdd(ctx, s.indexKey(), written...)
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txf, s.indexKey()); err != nil {
		return domain.NewStoreError(opLoad, err)
	}
	return nil
}

func (s *RedisStore) FindDiseases(ctx context.Context, symptom string) ([]domain.Diagnosis, error) {
	diseaseKeys, err := s.client.SMembers(ctx, s.symptomKey(domain.NormalizeSymptom(symptom))).Result()
	if err != nil {
		return nil, domain.NewStoreError(opFindDiseases, err)
	}
	out := make([]domain.Diagnosis, 0, len(diseaseKeys))
	if len(diseaseKeys) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	nameCmd := pipe.HMGet(ctx, s.diseaseNames(), diseaseKeys...)
	medCmds := make([]*redis.StringSliceCmd, len(diseaseKeys))
	for i, dk := range diseaseKeys {
		medCmds[i] = pipe.SMembers(ctx, s.diseaseKey(dk))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, domain.NewStoreError(opFindDiseases, err)
	}

	names := nameCmd.Val()
	medKeys := make([][]string, len(diseaseKeys))
	medNameCmds := make([]*redis.SliceCmd, len(diseaseKeys))
	pipe = s.client.Pipeline()
	for i := range diseaseKeys {
		medKeys[i] = medCmds[i].Val()
		if len(medKeys[i]) > 0 {
			medNameCmds[i] = pipe.HMGet(ctx, s.medicineNames(), medKeys[i]...)
		}
	}
	if pipe.Len() > 0 {
		if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
			return nil, domain.NewStoreError(opFindDiseases, err)
		}
	}

	for i, dk := range diseaseKeys {
		name := dk
		if i < len(names) {
			if v, ok := names[i].(string); ok && v != "" {
				name = v
			}
		}

		var meds []string
		if cmd := medNameCmds[i]; cmd != nil {
			for j, v := range cmd.Val() {
				if str, ok := v.(string); ok && str != "" {
					meds = append(meds, str)
				} else {
					meds = append(meds, medKeys[i][j])
				}
			}
		}
		out = append(out, domain.NewDiagnosis(name, meds))
	}

	domain.SortDiagnoses(out)
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return domain.NewStoreError(opPing, s.client.Ping(ctx).Err())
}

func (s *RedisStore) Close(context.Context) error {
	return s.client.Close()
}
