package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanignore/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var (
		jsonOutput  bool
		shortOutput bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			switch {
			case shortOutput:
				_, err := fmt.Fprintln(w, version.Short())
				return err
			case jsonOutput:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(version.GetInfo())
			case verbose:
				_, err := fmt.Fprint(w, version.Verbose())
				return err
			default:
				_, err := fmt.Fprintln(w, version.String())
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Output all build details")

	return cmd
}
