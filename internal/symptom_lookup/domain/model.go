package domain

import (
	"sort"
	"strings"
)

// Row is one line of the seed table.
type Row struct {
	Symptom  string `json:"symptom" yaml:"symptom" validate:"required"`
	Disease  string `json:"disease" yaml:"disease" validate:"required"`
	Medicine string `json:"medicine" yaml:"medicine" validate:"required"`
}

// Diagnosis is a disease together with the medicines that treat it.
type Diagnosis struct {
	Disease   string   `json:"disease"`
	Medicines []string `json:"medicines"`
}

// Result sources reported by the lookup service.
const (
	SourceStore    = "store"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

const NotFoundMessage = "No disease found for the given symptom."

type LookupResult struct {
	Symptom string      `json:"symptom"`
	Source  string      `json:"source"`
	Results []Diagnosis `json:"results"`
	Message string      `json:"message,omitempty"`
}

// NormalizeSymptom case-folds and trims a symptom phrase. Comma-joined
// phrases stay a single name.
func NormalizeSymptom(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NameKey is the identity key for disease and medicine nodes.
func NameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewDiagnosis returns a Diagnosis whose medicines are trimmed, de-duplicated
// and sorted. Medicines is never nil.
func NewDiagnosis(disease string, medicines []string) Diagnosis {
	seen := make(map[string]struct{}, len(medicines))
	out := make([]string, 0, len(medicines))
	for _, m := range medicines {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		k := NameKey(m)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return Diagnosis{Disease: strings.TrimSpace(disease), Medicines: out}
}

// SortDiagnoses orders results by disease name so repeated calls against an
// unchanged store return the same sequence.
func SortDiagnoses(ds []Diagnosis) {
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Disease < ds[j].Disease })
}
