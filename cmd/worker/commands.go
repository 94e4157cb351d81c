package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/GoSim-25-26J-441/symptom-finder/internal/bootstrap"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/domain"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/symptom_lookup/service"
)

// runLoad replaces the store contents with the given seed file, the
// configured SEED_PATH, or the embedded table, in that order of preference.
func runLoad(ctx context.Context, svc *service.LookupService, defaultPath string, args []string, out io.Writer) error {
	path := defaultPath
	if len(args) > 0 {
		path = args[0]
	}
	n, err := bootstrap.SeedStore(ctx, svc, path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "loaded %d rows\n", n)
	return err
}

// runLookup joins its arguments into one symptom, so an unquoted
// "fever, cough, fatigue" still matches the seeded node.
func runLookup(ctx context.Context, svc *service.LookupService, args []string, out io.Writer) error {
	symptom := strings.Join(args, " ")
	if strings.TrimSpace(symptom) == "" {
		return errors.New("a symptom is required")
	}

	res, err := svc.Lookup(ctx, symptom)
	if err != nil {
		return err
	}
	return printResult(out, res)
}

func printResult(out io.Writer, res *domain.LookupResult) error {
	if len(res.Results) == 0 {
		_, err := fmt.Fprintln(out, res.Message)
		return err
	}

	fmt.Fprintf(out, "Diseases for %q (source: %s)\n", res.Symptom, res.Source)
	for _, d := range res.Results {
		meds := "none"
		if len(d.Medicines) > 0 {
			meds = strings.Join(d.Medicines, ", ")
		}
		if _, err := fmt.Fprintf(out, "- %s: %s\n", d.Disease, meds); err != nil {
			return err
		}
	}
	return nil
}
