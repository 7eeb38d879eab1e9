package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vinayprograms/toolreg/trust"
)

var (
	trustExplain bool
	trustAudit   bool
)

// auditOutput is what --audit prints after the verdict.
type auditOutput struct {
	PublicKey string        `json:"public_key"`
	Record    *trust.Record `json:"record"`
}

var trustCmd = &cobra.Command{
	Use:   "trust <name> <url>",
	Short: "Check whether a plugin remote is trusted",
	Long: `Checks whether url may be used for plugin name without confirmation.

A url is untrusted only when it is the repository the registry maps name to
and that repository is outside github.com/mise-plugins. Exits 1 when untrusted.

Examples:
  toolreg trust poetry https://github.com/mise-plugins/mise-poetry
  trusted

  toolreg trust --explain helm https://github.com/Antiarchitect/asdf-helm
  toolreg trust --audit helm https://github.com/Antiarchitect/asdf-helm`,
	Args: cobra.ExactArgs(2),
	RunE: runTrust,
}

func init() {
	rootCmd.AddCommand(trustCmd)

	trustCmd.Flags().BoolVar(&trustExplain, "explain", false, "print the normalized and canonical urls and the reason")
	trustCmd.Flags().BoolVar(&trustAudit, "audit", false, "print the decision as an Ed25519-signed JSON record")
}

func runTrust(cmd *cobra.Command, args []string) error {
	cfg := trust.Config{
		Store:  current.store,
		Filter: current.filter,
		Logger: current.logger.WithComponent("trust"),
	}
	if trustAudit {
		trail, err := trust.NewAuditTrail("")
		if err != nil {
			return err
		}
		defer trail.Destroy()
		cfg.Audit = trail
	}
	d := trust.NewEvaluator(cfg).Evaluate(cmd.Context(), args[0], args[1])

	out := cmd.OutOrStdout()
	verdict := "trusted"
	if !d.Trusted {
		verdict = "untrusted"
	}
	fmt.Fprintln(out, verdict)

	if trustExplain {
		fmt.Fprintf(out, "  normalized: %s\n", d.Normalized)
		fmt.Fprintf(out, "  canonical:  %s\n", d.Canonical)
		fmt.Fprintf(out, "  reason:     %s\n", d.Reason)
	}

	if cfg.Audit != nil {
		records := cfg.Audit.Records()
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(auditOutput{
			PublicKey: cfg.Audit.PublicKey(),
			Record:    records[len(records)-1],
		}); err != nil {
			return err
		}
	}

	if !d.Trusted {
		return errUntrusted
	}
	return nil
}
