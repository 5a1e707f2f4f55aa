// Package output provides utilities for formatting and displaying solved plans.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/factory-planner/internal/plan"
	"github.com/iwvelando/factory-planner/internal/steps"
	"github.com/iwvelando/factory-planner/pkg/format"
	"github.com/iwvelando/factory-planner/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, plans []plan.Plan) {
	p := message.NewPrinter(language.English)
	for i, pl := range plans {
		_, _ = fmt.Fprintf(w, "--- Results for scenario %s ---\n", pl.Name)
		result := pl.Result
		if result == nil {
			_, _ = fmt.Fprintf(w, "no result\n")
			continue
		}
		_, _ = p.Fprintf(w, "Result: %s (%s, %d pivots, %v)\n", result.ResultType, result.Status, result.Pivots, result.Time)

		if len(result.Steps) > 0 {
			_, _ = fmt.Fprintf(w, "Step | Rate | Machines | Power | Inputs\n")
			_, _ = fmt.Fprintf(w, "____ | ____ | ________ | _____ | ______\n")
			for _, s := range result.Steps {
				_, _ = p.Fprintf(w, "%s | %s %s | %s (%d) | %s | %s\n",
					s.ID,
					format.Rate(s.Rate), s.Item,
					format.Number(s.Machines), mathutil.Ceil(s.Machines).Int64(),
					format.Power(s.Power),
					joinInputs(s.Inputs),
				)
			}
			_, _ = p.Fprintf(w, "Total: cost %s, %s machines, %s\n",
				format.Exact(result.Cost), format.Number(result.Machines()), format.Power(result.Power()))
		}
		if i < len(plans)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

func joinInputs(inputs []steps.StepOutput) string {
	parts := make([]string, 0, len(inputs))
	for _, in := range inputs {
		parts = append(parts, format.Rate(in.Rate)+" "+in.Item)
	}
	return strings.Join(parts, ", ")
}

// CsvFormat writes one row per step with exact rational values.
func CsvFormat(w io.Writer, plans []plan.Plan) error {
	writer := csv.NewWriter(w)
	header := []string{"scenario", "result", "step", "item", "rate", "recipes", "machines", "power_kw", "depth", "cyclic"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, pl := range plans {
		if pl.Result == nil {
			continue
		}
		if len(pl.Result.Steps) == 0 {
			if err := writer.Write([]string{pl.Name, string(pl.Result.ResultType), "", "", "", "", "", "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, s := range pl.Result.Steps {
			recipes := make([]string, 0, len(s.Recipes))
			for _, rf := range s.Recipes {
				recipes = append(recipes, rf.Recipe+"="+rf.Flow.String())
			}
			row := []string{
				pl.Name,
				string(pl.Result.ResultType),
				s.ID,
				s.Item,
				s.Rate.String(),
				strings.Join(recipes, ";"),
				s.Machines.String(),
				s.Power.String(),
				strconv.Itoa(s.Depth),
				strconv.FormatBool(s.Cyclic),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// CsvString returns the CSV form of plans.
func CsvString(plans []plan.Plan) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, plans); err != nil {
		return ""
	}
	return buf.String()
}

// JSONFormat writes plans as indented JSON.
func JSONFormat(w io.Writer, plans []plan.Plan) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(plans)
}
