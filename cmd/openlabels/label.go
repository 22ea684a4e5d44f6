package main

import (
	"fmt"
	"os"

	"github.com/chillbot-io/openlabels/pkg/engine"
	"github.com/chillbot-io/openlabels/pkg/label"
	"github.com/chillbot-io/openlabels/pkg/types"
	"github.com/spf13/cobra"
)

func newLabelCmd() *cobra.Command {
	var (
		modelPath  string
		outputFile string
		show       bool
	)

	cmd := &cobra.Command{
		Use:   "label <path>",
		Short: "Write or read a label set for a file",
		Long: `label runs detection over a file and writes a compact label set
describing what sensitive entity types it contains, without storing the
raw matched values. Pass --show to print an existing label set's
content hash and labels instead of regenerating it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if show {
				return showLabelSet(cmd, path)
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
			}

			eng, err := engine.New(modelPath)
			if err != nil {
				return fmt.Errorf("build engine: %w", err)
			}

			result, err := eng.Detect(cmd.Context(), string(content), types.DefaultConfig())
			if err != nil {
				return err
			}

			labels := label.FromSpans(result.Spans, result.EntityCounts, "openlabels:"+version)
			set, err := label.Create(labels, content, "openlabels:"+version, "")
			if err != nil {
				return fmt.Errorf("create label set: %w", err)
			}

			data, err := set.ToJSON()
			if err != nil {
				return fmt.Errorf("encode label set: %w", err)
			}

			target := outputFile
			if target == "" {
				target = path + ".labels.json"
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("write label set: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d label(s) to %s\n", len(set.Labels), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "path to an ML detector model, if the ML tier should run")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the label set here instead of <path>.labels.json")
	cmd.Flags().BoolVar(&show, "show", false, "read and print an existing label set instead of generating one")

	return cmd
}

func showLabelSet(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}

	set, err := label.FromJSON(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "label id:    %s\n", set.LabelID)
	fmt.Fprintf(cmd.OutOrStdout(), "content hash: %s\n", set.ContentHash)
	fmt.Fprintf(cmd.OutOrStdout(), "source:      %s\n", set.Source)
	fmt.Fprintf(cmd.OutOrStdout(), "labels:      %d\n", len(set.Labels))
	for _, l := range set.Labels {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", l.Type)
	}
	return nil
}
