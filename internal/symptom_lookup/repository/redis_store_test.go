package repository

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	err = client.Ping(context.Background()).Err()
	require.NoError(t, err)

	return client, mr
}

func TestRedisStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	testStoreContract(t, NewRedisStore(client, ""))
}

func TestRedisStore_ReloadRemovesStaleKeys(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewRedisStore(client, "test")
	ctx := context.Background()

	require.NoError(t, store.Load(ctx, []domain.Row{
		{Symptom: "Fever, chills, sweating", Disease: "Malaria", Medicine: "Chloroquine"},
	}))
	assert.True(t, mr.Exists("test:symptom:fever, chills, sweating"))
	assert.True(t, mr.Exists("test:disease:malaria"))

	require.NoError(t, store.Load(ctx, []domain.Row{
		{Symptom: "Headache", Disease: "Migraine", Medicine: "Sumatriptan"},
	}))
	assert.False(t, mr.Exists("test:symptom:fever, chills, sweating"))
	assert.False(t, mr.Exists("test:disease:malaria"))
	assert.True(t, mr.Exists("test:symptom:headache"))

	members, err := mr.Members("test:keys")
	require.NoError(t, err)
	assert.Contains(t, members, "test:symptom:headache")
}

func TestRedisStore_DiseaseWithoutMedicine(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewRedisStore(client, "test")
	ctx := context.Background()

	_, err := mr.SetAdd("test:symptom:cough", "pneumonia")
	require.NoError(t, err)
	mr.HSet("test:disease_names", "pneumonia", "Pneumonia")

	got, err := store.FindDiseases(ctx, "Cough")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pneumonia", got[0].Disease)
	assert.NotNil(t, got[0].Medicines)
	assert.Empty(t, got[0].Medicines)
}

func TestRedisStore_ConnectivityFailure(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()

	store := NewRedisStore(client, "")
	mr.Close()

	_, err := store.FindDiseases(context.Background(), "headache")
	require.Error(t, err)
	assert.True(t, domain.IsStoreError(err))

	err = store.Load(context.Background(), []domain.Row{{Symptom: "a", Disease: "b", Medicine: "c"}})
	assert.True(t, domain.IsStoreError(err))

	assert.True(t, domain.IsStoreError(store.Ping(context.Background())))
}

func TestNewRedisClient_DoesNotRetry(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	var conns atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns.Add(1)
			_ = conn.Close()
		}
	}()

	client := NewRedisClient(ln.Addr().String(), "", 0)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = NewRedisStore(client, "").FindDiseases(ctx, "headache")
	require.Error(t, err)
	assert.True(t, domain.IsStoreError(err))
	assert.Equal(t, int32(1), conns.Load())
}

// roundTrips counts single commands and pipelines sent by a client.
type roundTrips struct {
	commands  atomic.Int32
	pipelines atomic.Int32
}

func (h *roundTrips) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *roundTrips) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *roundTrips) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		h.pipelines.Add(1)
		return next(ctx, cmds)
	}
}

func TestRedisStore_FindDiseasesRoundTrips(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewRedisStore(client, "")
	ctx := context.Background()
	require.NoError(t, store.Load(ctx, []domain.Row{
		{Symptom: "Headache", Disease: "Migraine", Medicine: "Sumatriptan"},
		{Symptom: "Headache", Disease: "Tension Headache", Medicine: "Ibuprofen"},
		{Symptom: "Headache", Disease: "Hypertension", Medicine: "Amlodipine"},
		{Symptom: "Headache", Disease: "Hypertension", Medicine: "Lisinopril"},
	}))

	hook := &roundTrips{}
	client.AddHook(hook)

	got, err := store.FindDiseases(ctx, "headache")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.Diagnosis{Disease: "Hypertension", Medicines: []string{"Amlodipine", "Lisinopril"}}, got[0])

	assert.Equal(t, int32(1), hook.commands.Load())
	assert.Equal(t, int32(2), hook.pipelines.Load())
}
