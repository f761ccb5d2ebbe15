package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	caseselection "github.com/Mineru98/case-selection-go"
)

// Report is the serialized outcome of one selection run
type Report struct {
	RunID      string                     `json:"run_id"`
	Strategy   caseselection.StrategyKind `json:"strategy"`
	Number     int                        `json:"number"`
	Key        string                     `json:"key"`
	Candidates int                        `json:"candidates"`
	Queries    int                        `json:"queries"`
	Result     *caseselection.Result      `json:"result"`
}

// NewReport wraps a result with the run parameters and a fresh run id
func NewReport(cfg caseselection.Config, candidates, queries int, result *caseselection.Result) Report {
	return Report{
		RunID:      uuid.NewString(),
		Strategy:   result.Strategy,
		Number:     cfg.Number,
		Key:        cfg.Key,
		Candidates: candidates,
		Queries:    queries,
		Result:     result,
	}
}

// WriteReport encodes a report as indented JSON
func WriteReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteReportFile writes a report atomically through a temp file
func WriteReportFile(path string, report Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteReport(f, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// ReadReport decodes a report written by WriteReport
func ReadReport(r io.Reader) (Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return report, fmt.Errorf("decode report: %w", err)
	}
	return report, nil
}

// ReadReportFile reads a report from disk
func ReadReportFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return ReadReport(f)
}
