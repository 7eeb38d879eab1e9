package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vinayprograms/toolreg/backend"
	"github.com/vinayprograms/toolreg/listing"
	"github.com/vinayprograms/toolreg/registry"
)

var (
	searchLimit   int
	searchBackend string
	searchOutput  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the registry by name, alias or repository",
	Long: `Searches short names, aliases and backend locators.

Examples:
  toolreg search ripgrep
  toolreg search rg
  toolreg search --backend cargo BurntSushi`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchBackend, "backend", "b", "", "only tools declaring this backend")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "table", "output format: table, json, yaml")
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, err := listing.ParseFormat(searchOutput)
	if err != nil {
		return err
	}

	var kind backend.Kind
	if searchBackend != "" {
		if kind, err = backend.ParseKind(searchBackend); err != nil {
			return err
		}
	}

	idx, err := registry.NewIndex(current.store)
	if err != nil {
		return err
	}
	defer idx.Close()

	hits, err := idx.SearchKind(cmd.Context(), strings.Join(args, " "), kind, searchLimit)
	if err != nil {
		return err
	}

	rows := make([]listing.Row, 0, len(hits))
	for _, h := range hits {
		e, ok := current.store.Lookup(h.Short)
		if !ok {
			continue
		}
		rows = append(rows, listing.Row{Short: e.Short, Full: strings.Join(current.filter.Backends(e), " ")})
	}
	if len(rows) == 0 && format == listing.FormatTable {
		fmt.Fprintln(cmd.ErrOrStderr(), "no matches")
		return nil
	}
	return listing.Print(cmd.OutOrStdout(), format, rows)
}
