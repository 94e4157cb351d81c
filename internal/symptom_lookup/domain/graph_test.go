package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraph(t *testing.T) {
	rows := []Row{
		{Symptom: "Fever, cough, fatigue", Disease: "Influenza", Medicine: "Oseltamivir"},
		{Symptom: "fever, COUGH, fatigue ", Disease: "influenza", Medicine: "Oseltamivir"},
		{Symptom: "Fever, cough, fatigue", Disease: "Common Cold", Medicine: "Paracetamol"},
	}

	g, err := BuildGraph(rows)
	require.NoError(t, err)

	t.Run("merges nodes case-insensitively", func(t *testing.T) {
		assert.Len(t, g.Symptoms, 1)
		assert.Equal(t, "fever, cough, fatigue", g.Symptoms[0].Name)
		assert.Len(t, g.Diseases, 2)
		assert.Len(t, g.Medicines, 2)
	})

	t.Run("keeps first spelling for display", func(t *testing.T) {
		d, ok := g.Node(KindDisease, "INFLUENZA")
		require.True(t, ok)
		assert.Equal(t, "Influenza", d.Name)
	})

	t.Run("edges are sets", func(t *testing.T) {
		assert.Len(t, g.Indicates, 2)
		assert.Len(t, g.TreatedBy, 2)
	})

	t.Run("traverses three layers", func(t *testing.T) {
		got := g.FindDiseases("fever, cough, fatigue")
		require.Len(t, got, 2)
		assert.Equal(t, "Common Cold", got[0].Disease)
		assert.Equal(t, []string{"Paracetamol"}, got[0].Medicines)
		assert.Equal(t, "Influenza", got[1].Disease)
		assert.Equal(t, []string{"Oseltamivir"}, got[1].Medicines)
	})

	t.Run("unknown symptom yields empty slice", func(t *testing.T) {
		got := g.FindDiseases("sneezing")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestBuildGraph_RejectsBlankFields(t *testing.T) {
	_, err := BuildGraph([]Row{
		{Symptom: "Headache", Disease: "Migraine", Medicine: "Sumatriptan"},
		{Symptom: "Headache", Disease: "  ", Medicine: "Aspirin"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRow))
	assert.Contains(t, err.Error(), "row 2")
}

func TestNewDiagnosis_EmptyMedicinesMarshalAsArray(t *testing.T) {
	d := NewDiagnosis("Unknown Fever", nil)
	require.NotNil(t, d.Medicines)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"disease":"Unknown Fever","medicines":[]}`, string(b))
}

func TestNewDiagnosis_DedupesAndSorts(t *testing.T) {
	d := NewDiagnosis(" Bipolar Disorder ", []string{"Quetiapine", "Lithium", "lithium", ""})
	assert.Equal(t, "Bipolar Disorder", d.Disease)
	assert.Equal(t, []string{"Lithium", "Quetiapine"}, d.Medicines)
}

func TestSortOrderIsByteOrder(t *testing.T) {
	d := NewDiagnosis("Acne", []string{"benzoyl peroxide", "Tretinoin", "Adapalene"})
	assert.Equal(t, []string{"Adapalene", "Tretinoin", "benzoyl peroxide"}, d.Medicines)

	ds := []Diagnosis{{Disease: "common cold"}, {Disease: "Influenza"}, {Disease: "Asthma"}}
	SortDiagnoses(ds)
	assert.Equal(t, "Asthma", ds[0].Disease)
	assert.Equal(t, "Influenza", ds[1].Disease)
	assert.Equal(t, "common cold", ds[2].Disease)
}

func TestStoreError(t *testing.T) {
	base := errors.New("connection refused")
	err := NewStoreError("find_diseases", base)

	assert.True(t, IsStoreError(err))
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, "store find_diseases: connection refused", err.Error())

	// already wrapped errors keep their original op
	again := NewStoreError("load", err)
	var se *StoreError
	require.True(t, errors.As(again, &se))
	assert.Equal(t, "find_diseases", se.Op)

	assert.Nil(t, NewStoreError("load", nil))
	assert.False(t, IsStoreError(base))
}

func TestNormalizeSymptom(t *testing.T) {
	assert.Equal(t, "mood swings, depressed mood, loss of interest",
		NormalizeSymptom("  Mood swings, depressed mood, loss of interest "))
}
