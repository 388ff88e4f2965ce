package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chartmeta/internal/version"
)

func newVersionCommand() *cobra.Command {
	var (
		jsonOutput bool
		short      bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display the chartmeta version, git commit, build date, Go version, and platform.",
		Args:  cobra.NoArgs,
		// version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()
			out := cmd.OutOrStdout()

			switch {
			case jsonOutput:
				j, err := info.JSON()
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(out, j)

				return err
			case short:
				_, err := fmt.Fprintln(out, info.Version)
				return err
			default:
				_, err := fmt.Fprintln(out, info.String())
				return err
			}
		},
	}

	f := cmd.Flags()
	f.BoolVar(&jsonOutput, "json", false, "output version info as JSON")
	f.BoolVar(&short, "short", false, "print only the version number")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}
