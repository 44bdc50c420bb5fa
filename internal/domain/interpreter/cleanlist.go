package interpreter

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/OldRepublicDevs/modsync/internal/domain/component"
)

// jaroWinklerThreshold is the similarity ratio at or above which a clean-list
// row name is considered to refer to a selected component.
const jaroWinklerThreshold = 0.85

// mandatoryPrefix marks rows that apply regardless of selection.
const mandatoryPrefix = "mandatory"

// cleanRecord is one parsed row of a clean-list CSV: a mod name and the
// basenames to delete under the instruction's destination directory.
type cleanRecord struct {
	Name      string
	Files     []string
	Mandatory bool
}

// parseCleanList parses the clean-list CSV format: UTF-8, one record per
// line, comma-separated, no quoting. Empty lines are skipped.
func parseCleanList(data []byte) []cleanRecord {
	var records []cleanRecord
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		record := cleanRecord{
			Name:      strings.TrimSpace(fields[0]),
			Mandatory: strings.HasPrefix(strings.ToLower(strings.TrimSpace(fields[0])), mandatoryPrefix),
		}
		for _, f := range fields[1:] {
			f = strings.TrimSpace(f)
			if f != "" {
				record.Files = append(record.Files, f)
			}
		}
		records = append(records, record)
	}
	return records
}

// namesMatch reports whether a clean-list row name refers to a component
// name: case-insensitive substring in either direction, or Jaro-Winkler
// similarity at or above the threshold.
func namesMatch(rowName, componentName string) bool {
	a := strings.ToLower(strings.TrimSpace(rowName))
	b := strings.ToLower(strings.TrimSpace(componentName))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return smetrics.JaroWinkler(a, b, 0.7, 4) >= jaroWinklerThreshold
}

// execCleanList deletes the files listed in the CSV for every row whose
// mod name matches a selected component (or that is marked Mandatory).
func (in *Interpreter) execCleanList(ctx context.Context, instr *component.Instruction, index int, components []*component.Component) ActionExitCode {
	if len(instr.Source) == 0 || instr.Destination == "" {
		return BadInput
	}

	csvPath, err := in.paths.ResolveSource(instr.Source[0])
	if err != nil {
		return BadInput
	}
	data, err := in.provider.ReadAllBytes(csvPath)
	if err != nil {
		return in.mapError(ctx, instr, index, err)
	}
	destDir, err := in.paths.ResolveDestination(instr.Destination)
	if err != nil {
		return BadInput
	}

	var selectedNames []string
	for _, c := range components {
		if c.Selected {
			selectedNames = append(selectedNames, c.Name)
		}
	}

	for _, record := range parseCleanList(data) {
		if ctx.Err() != nil {
			return Cancelled
		}
		if !record.Mandatory && !matchesAnySelected(record.Name, selectedNames) {
			continue
		}
		for _, name := range record.Files {
			path := filepath.Join(destDir, name)
			if !in.provider.FileExists(path) {
				continue
			}
			if err := in.provider.Delete(path); err != nil {
				return in.mapError(ctx, instr, index, err)
			}
		}
	}
	return Success
}

func matchesAnySelected(rowName string, selectedNames []string) bool {
	for _, name := range selectedNames {
		if namesMatch(rowName, name) {
			return true
		}
	}
	return false
}
