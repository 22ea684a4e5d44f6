package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chillbot-io/openlabels/pkg/discovery"
	"github.com/chillbot-io/openlabels/pkg/engine"
	"github.com/chillbot-io/openlabels/pkg/report"
	"github.com/chillbot-io/openlabels/pkg/repository"
	"github.com/chillbot-io/openlabels/pkg/scoring"
	"github.com/chillbot-io/openlabels/pkg/types"
	"github.com/spf13/cobra"
)

// ScanResult is the summary newScanCmd prints for a path, aggregating
// every file's DetectionResult into one scored view.
type ScanResult struct {
	Path       string                `json:"path"`
	Files      int                   `json:"files"`
	Findings   []report.Finding      `json:"findings,omitempty"`
	Summary    report.ScanSummary    `json:"summary"`
	Score      scoring.ScoringResult `json:"score"`
	Warnings   []string              `json:"warnings,omitempty"`
	DurationMs int64                 `json:"duration_ms"`
}

func newScanCmd() *cobra.Command {
	var (
		minConfidence   float64
		exposure        string
		format          string
		outputFile      string
		modelPath       string
		includeFindings bool
		fromGit         string
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a file or directory for sensitive data",
		Long: `scan runs the detection pipeline over a single file or every
discoverable file under a directory tree, scores the aggregate findings,
and prints a summary. Use --format to export the full finding set as
SARIF, CSV, or HTML instead of the summary. Use --from-git instead of a
path to clone a GitHub repository and scan the clone; the clone is
removed once the scan finishes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case fromGit != "" && len(args) == 1:
				return fmt.Errorf("specify a path or --from-git, not both")
			case fromGit != "":
				path = fromGit
			case len(args) == 1:
				path = args[0]
			default:
				return fmt.Errorf("scan requires a path or --from-git")
			}

			eng, err := engine.New(modelPath)
			if err != nil {
				return fmt.Errorf("build engine: %w", err)
			}

			cfg := types.DefaultConfig()
			if minConfidence > 0 {
				cfg.MinConfidence = minConfidence
			}

			scanTarget := path
			if fromGit != "" {
				rm := repository.NewRepositoryManager(repository.DefaultGitHubConfig())
				repoInfo, err := rm.CloneAndTrack(cmd.Context(), fromGit)
				if err != nil {
					return fmt.Errorf("clone %s: %w", fromGit, err)
				}
				defer rm.CleanupAll()
				scanTarget = repoInfo.LocalPath
			}

			start := time.Now()
			findings, warnings, fileCount, entityCounts, err := scanPath(cmd.Context(), eng, scanTarget, cfg)
			if err != nil {
				return err
			}
			duration := time.Since(start)

			// The authoritative risk score is computed once from the
			// combined entity-type counts across every scanned file, so
			// co-occurrence rules (spec §4.7 step 3) can actually fire;
			// per-finding scores below are a per-entity-type severity
			// label for display/sorting, not a substitute for this.
			docScore := scoring.Score(entityCounts, exposure, scoring.DefaultConfidence)

			scored := scoreFindings(findings, exposure)
			result := ScanResult{
				Path:       path,
				Files:      fileCount,
				Summary:    report.Summarize(scored),
				Score:      docScore,
				Warnings:   warnings,
				DurationMs: duration.Milliseconds(),
			}
			if includeFindings {
				result.Findings = scored
			}

			metadata := report.ExportMetadata{
				Source:       path,
				ScanDuration: duration,
				ToolVersion:  version,
				Timestamp:    start,
			}

			return writeScanOutput(cmd.OutOrStdout(), format, outputFile, result, scored, metadata)
		},
	}

	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "override the minimum confidence floor (default 0.5)")
	cmd.Flags().StringVar(&exposure, "exposure", "INTERNAL", "exposure context for scoring (PUBLIC, INTERNAL, PRIVATE)")
	cmd.Flags().StringVar(&format, "format", "summary", "output format: summary, json, sarif, csv, html")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write output to this file instead of stdout")
	cmd.Flags().StringVar(&modelPath, "model", "", "path to an ML detector model, if the ML tier should run")
	cmd.Flags().BoolVar(&includeFindings, "include-findings", false, "include the full finding list in summary/json output")
	cmd.Flags().StringVar(&fromGit, "from-git", "", "clone and scan a GitHub repository (owner/repo, https URL, or ssh URL) instead of a local path")

	return cmd
}

// scanPath runs detection over path, walking it with pkg/discovery when
// it's a directory and calling the single-file API directly otherwise.
// It also sums each scanned file's types.DetectionResult.EntityCounts
// into one combined map, the aggregate the caller needs for a
// co-occurrence-aware document score (spec §4.7 step 3).
func scanPath(ctx context.Context, eng *engine.Engine, path string, cfg types.Config) ([]report.Finding, []string, int, map[string]int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, 0, nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}

	entityCounts := map[string]int{}

	if !info.IsDir() {
		result, err := eng.DetectFile(ctx, path, engine.FileConfig{Config: cfg})
		if err != nil {
			return nil, nil, 0, nil, err
		}
		addEntityCounts(entityCounts, result.EntityCounts)
		return report.FromDetectionResult(result, path), result.Warnings, 1, entityCounts, nil
	}

	fd := discovery.NewFileDiscovery(discovery.DefaultConfig())
	files, err := fd.DiscoverFiles(ctx, path)
	if err != nil {
		return nil, nil, 0, nil, fmt.Errorf("discover files under %s: %w", path, err)
	}

	var (
		findings []report.Finding
		warnings []string
	)
	for _, f := range files {
		result, err := eng.DetectFile(ctx, f.Path, engine.FileConfig{Config: cfg})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		rel, relErr := filepath.Rel(path, f.Path)
		if relErr != nil {
			rel = f.Path
		}
		findings = append(findings, report.FromDetectionResult(result, rel)...)
		warnings = append(warnings, result.Warnings...)
		addEntityCounts(entityCounts, result.EntityCounts)
	}

	return findings, warnings, len(files), entityCounts, nil
}

// addEntityCounts sums src's per-type counts into dst in place.
func addEntityCounts(dst, src map[string]int) {
	for t, c := range src {
		dst[t] += c
	}
}

// scoreFindings attaches a per-entity-type ScoringResult to every
// finding, scoring each entity type in isolation against the exposure
// the caller asked about. This gives each finding a severity label for
// display/sorting; it deliberately does not see the other entity types
// present, so it cannot trigger co-occurrence amplification — the
// document-level score computed once from the combined entity counts
// (see scanPath/docScore above) is the one that does.
func scoreFindings(findings []report.Finding, exposure string) []report.Finding {
	scored := make([]report.Finding, len(findings))
	for i, f := range findings {
		f.ScoreResult = scoring.Score(map[string]int{f.Span.EntityType: 1}, exposure, f.Span.Confidence)
		scored[i] = f
	}
	return scored
}

func writeScanOutput(stdout io.Writer, format, outputFile string, result ScanResult, findings []report.Finding, metadata report.ExportMetadata) error {
	w := stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "", "summary":
		return printSummary(w, result)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "sarif":
		exporter := report.NewSARIFExporter("openlabels", version, "https://github.com/chillbot-io/openlabels")
		return exporter.Export(w, findings, metadata)
	case "csv":
		return report.NewCSVExporter(report.WithContext()).ExportFindings(w, findings, metadata)
	case "html":
		data := report.BuildHTMLReportData(metadata.Source, findings, metadata)
		tmpl, err := report.GetHTMLTemplate()
		if err != nil {
			return fmt.Errorf("load html template: %w", err)
		}
		return tmpl.ExecuteTemplate(w, "report", data)
	default:
		return fmt.Errorf("unknown format %q: must be one of summary, json, sarif, csv, html", format)
	}
}

func printSummary(w io.Writer, result ScanResult) error {
	s := result.Summary
	if _, err := fmt.Fprintf(w, "Scanned %s (%d file(s)) in %dms\n", result.Path, result.Files, result.DurationMs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Findings: %d (critical=%d high=%d medium=%d low=%d minimal=%d)\n",
		s.TotalFindings, s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount, s.MinimalCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Risk score: %d (%s)\n", result.Score.Score, result.Score.Tier); err != nil {
		return err
	}
	if len(s.UniqueTypes) > 0 {
		if _, err := fmt.Fprintf(w, "Entity types: %v\n", s.UniqueTypes); err != nil {
			return err
		}
	}
	for _, warning := range result.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}
