package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type NodeKind string

const (
	KindSymptom  NodeKind = "Symptom"
	KindDisease  NodeKind = "Disease"
	KindMedicine NodeKind = "Medicine"
)

type EdgeKind string

const (
	EdgeIndicates EdgeKind = "INDICATES"
	EdgeTreatedBy EdgeKind = "TREATED_BY"
)

// Node is keyed by its case-folded name; Name keeps the first spelling seen.
type Node struct {
	Key  string   `json:"key"`
	Name string   `json:"name"`
	Kind NodeKind `json:"kind"`
}

type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// Graph is the de-duplicated form of a seed table. Every store backend writes
// a Graph, so merge-on-name semantics live in one place.
type Graph struct {
	Symptoms  []*Node
	Diseases  []*Node
	Medicines []*Node
	Indicates []Edge
	TreatedBy []Edge

	nodes map[NodeKind]map[string]*Node
	edges map[Edge]struct{}
}

func NewGraph() *Graph {
	return &Graph{
		nodes: map[NodeKind]map[string]*Node{
			KindSymptom:  {},
			KindDisease:  {},
			KindMedicine: {},
		},
		edges: map[Edge]struct{}{},
	}
}

// AddNode merges on key and returns the stored node.
func (g *Graph) AddNode(kind NodeKind, name string) *Node {
	key := NameKey(name)
	if n, ok := g.nodes[kind][key]; ok {
		return n
	}
	n := &Node{Key: key, Name: strings.TrimSpace(name), Kind: kind}
	if kind == KindSymptom {
		n.Name = key
	}
	g.nodes[kind][key] = n
	switch kind {
	case KindSymptom:
		g.Symptoms = append(g.Symptoms, n)
	case KindDisease:
		g.Diseases = append(g.Diseases, n)
	case KindMedicine:
		g.Medicines = append(g.Medicines, n)
	}
	return n
}

// AddEdge is a no-op for an edge that already exists.
func (g *Graph) AddEdge(from, to *Node, kind EdgeKind) {
	e := Edge{From: from.Key, To: to.Key, Kind: kind}
	if _, ok := g.edges[e]; ok {
		return
	}
	g.edges[e] = struct{}{}
	switch kind {
	case EdgeIndicates:
		g.Indicates = append(g.Indicates, e)
	case EdgeTreatedBy:
		g.TreatedBy = append(g.TreatedBy, e)
	}
}

func (g *Graph) Node(kind NodeKind, name string) (*Node, bool) {
	n, ok := g.nodes[kind][NameKey(name)]
	return n, ok
}

// FindDiseases walks Symptom -> Disease -> Medicine for an already
// normalized symptom name.
func (g *Graph) FindDiseases(symptom string) []Diagnosis {
	out := []Diagnosis{}
	s, ok := g.nodes[KindSymptom][symptom]
	if !ok {
		return out
	}
	for _, ind := range g.Indicates {
		if ind.From != s.Key {
			continue
		}
		d := g.nodes[KindDisease][ind.To]
		var meds []string
		for _, tb := range g.TreatedBy {
			if tb.From == d.Key {
				meds = append(meds, g.nodes[KindMedicine][tb.To].Name)
			}
		}
		out = append(out, NewDiagnosis(d.Name, meds))
	}
	SortDiagnoses(out)
	return out
}

var validate = validator.New()

// ValidateRows checks that every field of every row is non-empty.
func ValidateRows(rows []Row) error {
	for i, r := range rows {
		trimmed := Row{
			Symptom:  strings.TrimSpace(r.Symptom),
			Disease:  strings.TrimSpace(r.Disease),
			Medicine: strings.TrimSpace(r.Medicine),
		}
		if err := validate.Struct(trimmed); err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrInvalidRow, i+1, err)
		}
	}
	return nil
}

// BuildGraph validates rows and folds them into a Graph.
func BuildGraph(rows []Row) (*Graph, error) {
	if err := ValidateRows(rows); err != nil {
		return nil, err
	}
	g := NewGraph()
	for _, r := range rows {
		s := g.AddNode(KindSymptom, r.Symptom)
		d := g.AddNode(KindDisease, r.Disease)
		m := g.AddNode(KindMedicine, r.Medicine)
		g.AddEdge(s, d, EdgeIndicates)
		g.AddEdge(d, m, EdgeTreatedBy)
	}
	return g, nil
}
