package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-index/internal/application/handlers"
	"github.com/ersonp/lore-index/internal/domain/entities"
)

func newQueryCmd() *cobra.Command {
	var (
		limit      int
		entityType string
		stopwords  string
	)

	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Search the knowledge base",
		Long:  "Runs a ranked BM25 search against the persisted index. Without arguments, enters an interactive query loop.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runQuery(cmd, query, limit, entityType, stopwords)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of results (0 = configured default)")
	cmd.Flags().StringVarP(&entityType, "type", "t", "", "Filter by entity type (place, character, group, event, concept, rule, ...)")
	cmd.Flags().StringVar(&stopwords, "stopwords", "", "Stopword language for query terms, e.g. 'de' ('none' disables, empty = configured default)")

	return cmd
}

func runQuery(cmd *cobra.Command, query string, limit int, entityType, stopwords string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if err := loadSnapshot(ctx, d); err != nil {
			return err
		}

		if query != "" {
			return printSearch(d.Handler, query, limit, entityType, stopwords)
		}

		fmt.Println("BM25 search - type a query (or 'exit'):")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}
			if err := printSearch(d.Handler, line, limit, entityType, stopwords); err != nil {
				return err
			}
		}
	})
}

func printSearch(handler *handlers.SearchHandler, query string, limit int, entityType, stopwords string) error {
	result, err := handler.Handle(query, limit, entityType, stopwords)
	if err != nil {
		return fmt.Errorf("querying entities: %w", err)
	}

	if len(result.Results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, hit := range result.Results {
		printHit(i+1, hit)
		fmt.Println(strings.Repeat("-", 80))
	}
	return nil
}

func printHit(rank int, hit entities.RankedResult) {
	fmt.Printf("Top %d  (Score: %.4f)\n", rank, hit.Score)
	fmt.Printf("Entity: %s [%s]\n", hit.ID, hit.Type)
	if hit.Description != "" {
		fmt.Printf("Description: %s\n", hit.Description)
	}
	fmt.Println("Facts:")
	if len(hit.Facts) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, fact := range hit.Facts {
		if fact.Source != "" {
			fmt.Printf("  - %s (Quelle: %s)\n", fact.Statement, fact.Source)
		} else {
			fmt.Printf("  - %s\n", fact.Statement)
		}
	}
}
