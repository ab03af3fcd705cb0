// County, radio and export profile commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/omnibus/internal/export"
	"github.com/mesh-intelligence/omnibus/internal/sqlite"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

var countyCrud = crud{
	noun: "county",
	create: func(b *sqlite.Backend, args []string) (int64, error) {
		var c types.County
		if err := decodeRecord(args, &c); err != nil {
			return 0, err
		}
		return b.Counties().Create(&c)
	},
	update: func(b *sqlite.Backend, id int64, p types.Patch) error { return b.Counties().Update(id, p) },
	delete: func(b *sqlite.Backend, id int64) error { return b.Counties().Delete(id) },
}

func newCountyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "county",
		Aliases: []string{"counties"},
		Short:   "Manage reference counties",
	}
	list := &cobra.Command{
		Use:   "list [filter...]",
		Short: "List counties, nearest first",
		Long:  "Filter keys: state, region, distance_from_kc",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter types.CountyFilter
			if err := decodeFilter(args, &filter); err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				counties, err := b.Counties().List(&filter)
				if err != nil {
					return err
				}
				return a.emit(cmd, counties, func(w io.Writer) {
					rows := make([][]string, len(counties))
					for i, c := range counties {
						rows[i] = []string{idString(c.ID), c.Name, c.State, c.Region, strconv.FormatFloat(c.DistanceFromKC, 'f', -1, 64)}
					}
					printTable(w, []string{"ID", "NAME", "STATE", "REGION", "MILES"}, rows, "counties")
				})
			})
		},
	}
	cmd.AddCommand(list,
		newAddCmd(a, countyCrud, `  omnibus county add name=Bates state=MO region=Regional distance_from_kc=60`),
		newUpdateCmd(a, countyCrud),
		newDeleteCmd(a, countyCrud, ""),
	)
	return cmd
}

var radioCrud = crud{
	noun: "radio",
	create: func(b *sqlite.Backend, args []string) (int64, error) {
		var r types.Radio
		if err := decodeRecord(args, &r); err != nil {
			return 0, err
		}
		return b.Radios().Create(&r)
	},
	update: func(b *sqlite.Backend, id int64, p types.Patch) error { return b.Radios().Update(id, p) },
	delete: func(b *sqlite.Backend, id int64) error { return b.Radios().Delete(id) },
}

func newRadioCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "radio",
		Aliases: []string{"radios"},
		Short:   "Manage target radio profiles",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List radios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				radios, err := b.Radios().List()
				if err != nil {
					return err
				}
				return a.emit(cmd, radios, func(w io.Writer) {
					rows := make([][]string, len(radios))
					for i, r := range radios {
						rng := strconv.FormatFloat(r.MinFrequency, 'f', -1, 64) + "-" + strconv.FormatFloat(r.MaxFrequency, 'f', -1, 64)
						rows[i] = []string{idString(r.ID), r.Name, r.Type, rng, r.SupportedModes}
					}
					printTable(w, []string{"ID", "NAME", "TYPE", "MHZ", "MODES"}, rows, "radios")
				})
			})
		},
	}
	get := &cobra.Command{
		Use:   "get <id|name>",
		Short: "Show one radio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				r, err := findRadio(b, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), r)
			})
		},
	}
	cmd.AddCommand(list, get,
		newAddCmd(a, radioCrud, `  omnibus radio add name="Yaesu FT-60" type=CHIRP min_frequency=108 max_frequency=520 supported_modes=FM,AM`),
		newUpdateCmd(a, radioCrud),
		newDeleteCmd(a, radioCrud, ""),
	)
	return cmd
}

// findRadio looks a radio up by numeric ID, falling back to its name.
func findRadio(b *sqlite.Backend, ref string) (*types.Radio, error) {
	if id, err := parseID(ref); err == nil {
		r, err := b.Radios().Get(id)
		if err == nil || !errors.Is(err, types.ErrNotFound) {
			return r, err
		}
	}
	return b.Radios().FindByName(ref)
}

var profileCrud = crud{
	noun: "profile",
	create: func(b *sqlite.Backend, args []string) (int64, error) {
		p := types.ExportProfile{FilterQuery: "{}", SortOrder: "frequency ASC"}
		if err := decodeRecord(args, &p); err != nil {
			return 0, err
		}
		return b.Profiles().Create(&p)
	},
	update: func(b *sqlite.Backend, id int64, p types.Patch) error { return b.Profiles().Update(id, p) },
	delete: func(b *sqlite.Backend, id int64) error { return b.Profiles().Delete(id) },
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Manage saved export profiles",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List export profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				profiles, err := b.Profiles().List()
				if err != nil {
					return err
				}
				return a.emit(cmd, profiles, func(w io.Writer) {
					rows := make([][]string, len(profiles))
					for i, p := range profiles {
						rows[i] = []string{idString(p.ID), p.Name, idString(p.RadioID), p.FilterQuery, p.SortOrder}
					}
					printTable(w, []string{"ID", "NAME", "RADIO", "FILTER", "SORT"}, rows, "profiles")
				})
			})
		},
	}

	var out string
	run := &cobra.Command{
		Use:   "run <id> [format]",
		Short: "Export the frequencies a profile selects",
		Long: `Run resolves the profile's filter and sort order, checks the rows against
the profile's radio, and renders them. The format defaults to the one
matching the radio's type. Compatibility problems are printed as warnings
and do not stop the export.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				res, err := b.Profiles().Run(id)
				if err != nil {
					return err
				}
				name := res.Radio.Type
				if len(args) == 2 {
					name = args[1]
				}
				f, err := export.ParseFormat(name)
				if err != nil {
					return err
				}
				warn(cmd, export.Validate(res.Frequencies, &res.Radio))
				src := export.Source{Frequencies: res.Frequencies}
				if f == export.FormatSDRTrunk {
					if src.Trunked, err = b.BusinessTrunked(); err != nil {
						return err
					}
				}
				return a.render(cmd, f, src, out)
			})
		},
	}
	run.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default: stdout)")

	cmd.AddCommand(list, run,
		newAddCmd(a, profileCrud, `  omnibus profile add radio_id=1 name="2m simplex" filter_query='{"frequency_range":[144,148]}' sort_order="frequency ASC"`),
		newUpdateCmd(a, profileCrud),
		newDeleteCmd(a, profileCrud, ""),
	)
	return cmd
}

// warn prints advisory radio compatibility messages to stderr.
func warn(cmd *cobra.Command, problems []string) {
	for _, p := range problems {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", p)
	}
}
