package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-index/internal/infrastructure/parsers"
)

func newBuildCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "build <corpus-file>",
		Short: "Build the search index from an entity corpus",
		Long:  "Parses the entity corpus, builds the inverted index, and persists it as a snapshot.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Corpus format (json, csv); inferred from extension when omitted")

	return cmd
}

func runBuild(cmd *cobra.Command, corpusPath, format string) error {
	ctx := cmd.Context()

	parser := parsers.ForFormat(format)
	if parser == nil {
		parser = parsers.ForFile(corpusPath)
	}
	if parser == nil {
		return fmt.Errorf("unsupported corpus format for %q (use --format)", corpusPath)
	}

	file, err := os.Open(corpusPath)
	if err != nil {
		return fmt.Errorf("opening corpus file: %w", err)
	}
	defer file.Close()

	ents, err := parser.Parse(file)
	if err != nil {
		return fmt.Errorf("parsing corpus: %w", err)
	}

	return withDeps(func(d *Deps) error {
		start := time.Now()

		snap, err := d.Engine.Build(ctx, ents)
		if err != nil {
			return fmt.Errorf("building index: %w", err)
		}

		if err := d.Store.Save(ctx, snap); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}

		d.Log.Info().
			Int("documents", snap.DocCount).
			Dur("duration", time.Since(start)).
			Str("snapshot", d.Store.Path()).
			Msg("index built")

		fmt.Printf("Indexed %d entities in %s.\n", snap.DocCount, time.Since(start).Round(time.Millisecond))
		return nil
	})
}
