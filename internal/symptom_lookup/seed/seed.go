package seed

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
)

//go:embed seed.csv
var defaultTable []byte

var (
	ErrBadHeader         = errors.New("seed header must be Symptom,Disease,Medicine")
	ErrUnsupportedFormat = errors.New("unsupported seed format")
)

var header = []string{"symptom", "disease", "medicine"}

// Default returns the embedded seed table.
func Default() ([]domain.Row, error) {
	return ReadCSV(bytes.NewReader(defaultTable))
}

// ReadCSV parses a Symptom,Disease,Medicine table. Fields containing commas
// are quoted; a quoted symptom list stays one field.
func ReadCSV(r io.Reader) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrBadHeader
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range head {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), header[i]) {
			return nil, fmt.Errorf("%w: got %q", ErrBadHeader, strings.Join(head, ","))
		}
	}

	rows := []domain.Row{}
	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("csv read error: %w", err)
		}
		rows = append(rows, domain.Row{
			Symptom:  strings.TrimSpace(rec[0]),
			Disease:  strings.TrimSpace(rec[1]),
			Medicine: strings.TrimSpace(rec[2]),
		})
	}

	if err := domain.ValidateRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadYAML parses a list of {symptom, disease, medicine} mappings.
func ReadYAML(r io.Reader) ([]domain.Row, error) {
	var rows []domain.Row
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if err == io.EOF {
			return []domain.Row{}, nil
		}
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	for i := range rows {
		rows[i].Symptom = strings.TrimSpace(rows[i].Symptom)
		rows[i].Disease = strings.TrimSpace(rows[i].Disease)
		rows[i].Medicine = strings.TrimSpace(rows[i].Medicine)
	}
	if err := domain.ValidateRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadFile picks the reader by file extension.
func ReadFile(path string) ([]domain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load returns the rows at path, or the embedded table when path is empty.
func Load(path string) ([]domain.Row, error) {
	if path == "" {
		return Default()
	}
	return ReadFile(path)
}
