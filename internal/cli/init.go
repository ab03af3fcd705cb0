package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/omnibus/internal/paths"
	"github.com/mesh-intelligence/omnibus/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize omnibus storage",
		Long: `Init writes config.yaml if it is missing, then creates the database with
its tables and views. --seed adds the reference counties and default radios
to empty tables. Running init again is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.DataDir)
			if err != nil {
				return fmt.Errorf("resolve data dir: %w", err)
			}
			wrote, err := writeConfigIfMissing(a.configDir, dataDir)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if wrote {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", paths.ConfigFile(a.configDir))
			}

			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if !seed {
					fmt.Fprintf(cmd.OutOrStdout(), "Omnibus initialized at %s\n", b.Path())
					return nil
				}
				res, err := b.Seed()
				if err != nil {
					return err
				}
				return a.emit(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "Omnibus initialized at %s (seeded %d counties, %d radios)\n", b.Path(), res.Counties, res.Radios)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert reference counties and radios into empty tables")
	return cmd
}
