// Frequency commands: list, get, add, update, delete and toggle.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/omnibus/internal/sqlite"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

func newFreqCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "freq",
		Aliases: []string{"frequency", "frequencies"},
		Short:   "Manage conventional frequencies",
	}
	cmd.AddCommand(
		newFreqListCmd(a),
		newFreqGetCmd(a),
		newFreqAddCmd(a),
		newFreqUpdateCmd(a),
		newFreqDeleteCmd(a),
		newFreqToggleCmd(a),
	)
	return cmd
}

func newFreqListCmd(a *app) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "list [filter...]",
		Short: "List frequencies with optional filters",
		Long: `List queries frequencies. Filters are key=value pairs and are ANDed
together; list-valued keys take comma-separated values.

Filter keys: mode, service_type, county, state, active, search,
distance_from_kc, frequency_range, tag_contains

Example:
  omnibus freq list
  omnibus freq list mode=FM,NFM county=Jackson
  omnibus freq list frequency_range=144,148 active=true
  omnibus freq list search=fire --page 2 --page-size 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter types.FrequencyFilter
			if err := decodeFilter(args, &filter); err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if page > 0 {
					res, err := b.Frequencies().Page(&filter, page, pageSize)
					if err != nil {
						return err
					}
					return a.emit(cmd, res, func(w io.Writer) {
						printFrequencies(w, res.Items)
						fmt.Fprintf(w, "Page %d (%d per page) of %d matching\n", res.Page, res.PageSize, res.Total)
					})
				}
				freqs, err := b.Frequencies().List(&filter)
				if err != nil {
					return err
				}
				return a.emit(cmd, freqs, func(w io.Writer) { printFrequencies(w, freqs) })
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 1 (0 = no paging)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (default 100)")
	return cmd
}

func newFreqGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one frequency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				f, err := b.Frequencies().Get(id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), f)
			})
		},
	}
}

func newFreqAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <field=value>...",
		Short: "Add a frequency",
		Long: `Add creates a frequency from field=value pairs using the column names.
frequency, name and mode are required; active defaults to true.

Example:
  omnibus freq add frequency=146.52 name="KC Simplex" mode=FM county=Jackson export_chirp=1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := types.Frequency{Active: true}
			if err := decodeRecord(args, &f); err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				id, err := b.Frequencies().Create(&f)
				if err != nil {
					return err
				}
				f.ID = id
				return a.emit(cmd, f, func(w io.Writer) {
					fmt.Fprintf(w, "Created frequency %d\n", id)
				})
			})
		},
	}
}

func newFreqUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id[,id...]> <field=value>...",
		Short: "Update fields of one or more frequencies",
		Long: `Update writes only the named columns. An empty value clears a
nullable column. Several comma-separated IDs are updated in one
transaction: either all change or none do.

Example:
  omnibus freq update 12 name="Jackson Fire" tone_freq=156.7
  omnibus freq update 12,13,14 export_uniden=1`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[0])
			if err != nil {
				return err
			}
			patch, err := parsePatch(args[1:])
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if len(ids) == 1 {
					if err := b.Frequencies().Update(ids[0], patch); err != nil {
						return err
					}
				} else {
					updates := make([]types.FrequencyUpdate, len(ids))
					for i, id := range ids {
						updates[i] = types.FrequencyUpdate{ID: id, Patch: patch}
					}
					if err := b.Frequencies().BatchUpdate(updates); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
				return nil
			})
		},
	}
}

func newFreqDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a frequency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := confirm(cmd, yes, "Delete frequency %d?", id); err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if err := b.Frequencies().Delete(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted frequency %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}

func newFreqToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id> <flag>",
		Short: "Flip one export flag of a frequency",
		Long: `Toggle inverts one export flag and leaves the others alone.

Flags: chirp, uniden, sdrtrunk, sdrplus, opengd77 (or the export_ column name)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flag, err := types.ParseExportFlag(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q (valid: chirp, uniden, sdrtrunk, sdrplus, opengd77)", err, args[1])
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				on, err := b.Frequencies().ToggleFlag(id, flag)
				if err != nil {
					return err
				}
				return a.emit(cmd, map[string]any{"id": id, "flag": flag, "value": on}, func(w io.Writer) {
					fmt.Fprintf(w, "%s is now %t for frequency %d\n", flag, on, id)
				})
			})
		},
	}
}

// flagLetters renders the five export flags as a fixed-width marker, one
// letter per enabled flag in column order.
func flagLetters(f *types.Frequency) string {
	letters := []string{"C", "U", "T", "S", "G"}
	var sb strings.Builder
	for i, flag := range types.ExportFlags {
		if f.Flag(flag) {
			sb.WriteString(letters[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

func printFrequencies(w io.Writer, freqs []types.Frequency) {
	rows := make([][]string, len(freqs))
	for i := range freqs {
		f := &freqs[i]
		active := "yes"
		if !f.Active {
			active = "no"
		}
		rows[i] = []string{idString(f.ID), mhz(f.Frequency), f.Mode, f.Name, opt(f.County), opt(f.ServiceType), active, flagLetters(f)}
	}
	printTable(w, []string{"ID", "MHZ", "MODE", "NAME", "COUNTY", "SERVICE", "ACTIVE", "EXPORTS"}, rows, "frequencies")
}
