package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vinayprograms/toolreg/backend"
	"github.com/vinayprograms/toolreg/listing"
)

var (
	registryBackend string
	registryOutput  string
)

var registryCmd = &cobra.Command{
	Use:   "registry [name]",
	Short: "List available tools",
	Long: `Lists the tools available in the registry as short names.

For example, poetry is short for asdf:mise-plugins/mise-poetry.

Examples:
  toolreg registry
  node    core:node
  poetry  asdf:mise-plugins/mise-poetry
  ubi     cargo:ubi-cli

  toolreg registry poetry
  asdf:mise-plugins/mise-poetry

  toolreg registry --backend cargo --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegistry,
}

func init() {
	rootCmd.AddCommand(registryCmd)

	registryCmd.Flags().StringVarP(&registryBackend, "backend", "b", "", "show only tools for this backend")
	registryCmd.Flags().StringVarP(&registryOutput, "output", "o", "table", "output format: table, json, yaml")
}

func runRegistry(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		full, err := listing.Show(cmd.Context(), current.store, current.filter, args[0])
		current.logger.Lookup(args[0], err == nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, full)
		return nil
	}

	format, err := listing.ParseFormat(registryOutput)
	if err != nil {
		return err
	}

	var kind *backend.Kind
	if registryBackend != "" {
		k, err := backend.ParseKind(registryBackend)
		if err != nil {
			return err
		}
		kind = &k
	}

	return listing.Print(out, format, listing.Rows(current.store, current.filter, kind))
}
