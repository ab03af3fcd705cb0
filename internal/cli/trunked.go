// Trunked system, site and talkgroup commands.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/omnibus/internal/sqlite"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// crud bundles the per-table operations the generic subcommands need.
type crud struct {
	noun   string
	create func(b *sqlite.Backend, args []string) (int64, error)
	update func(b *sqlite.Backend, id int64, patch types.Patch) error
	delete func(b *sqlite.Backend, id int64) error
}

func newAddCmd(a *app, c crud, example string) *cobra.Command {
	return &cobra.Command{
		Use:     "add <field=value>...",
		Short:   "Add a " + c.noun,
		Example: example,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				id, err := c.create(b, args)
				if err != nil {
					return err
				}
				return a.emit(cmd, map[string]int64{"id": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Created %s %d\n", c.noun, id)
				})
			})
		},
	}
}

func newUpdateCmd(a *app, c crud) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <field=value>...",
		Short: "Update fields of a " + c.noun,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := parsePatch(args[1:])
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if err := c.update(b, id, patch); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d\n", c.noun, id)
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app, c crud, long string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + c.noun,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := confirm(cmd, yes, "Delete %s %d?", c.noun, id); err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if err := c.delete(b, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", c.noun, id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}

var systemCrud = crud{
	noun: "system",
	create: func(b *sqlite.Backend, args []string) (int64, error) {
		s := types.TrunkedSystem{Active: true}
		if err := decodeRecord(args, &s); err != nil {
			return 0, err
		}
		return b.Systems().Create(&s)
	},
	update: func(b *sqlite.Backend, id int64, p types.Patch) error { return b.Systems().Update(id, p) },
	delete: func(b *sqlite.Backend, id int64) error { return b.Systems().Delete(id) },
}

func newSystemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "system",
		Aliases: []string{"systems"},
		Short:   "Manage trunked radio systems",
	}

	list := &cobra.Command{
		Use:   "list [filter...]",
		Short: "List trunked systems",
		Long: `Filter keys: type, system_class, protocol, active, search

Example:
  omnibus system list system_class=Business
  omnibus system list type=P25,DMR`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter types.SystemFilter
			if err := decodeFilter(args, &filter); err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				systems, err := b.Systems().List(&filter)
				if err != nil {
					return err
				}
				return a.emit(cmd, systems, func(w io.Writer) {
					rows := make([][]string, len(systems))
					for i, s := range systems {
						rows[i] = []string{idString(s.ID), s.SystemID, s.Name, s.Type, opt(s.SystemClass)}
					}
					printTable(w, []string{"ID", "SYSTEM ID", "NAME", "TYPE", "CLASS"}, rows, "systems")
				})
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a system with its sites and talkgroups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				d, err := b.Systems().Detail(id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), d)
			})
		},
	}

	cmd.AddCommand(list, get,
		newAddCmd(a, systemCrud, `  omnibus system add system_id=6643 name="Metro Area Radio System" type=P25 system_class="Public Safety"`),
		newUpdateCmd(a, systemCrud),
		newDeleteCmd(a, systemCrud, "Delete removes the system together with all of its sites and talkgroups."),
	)
	return cmd
}

var siteCrud = crud{
	noun: "site",
	create: func(b *sqlite.Backend, args []string) (int64, error) {
		s := types.TrunkedSite{Active: true}
		if err := decodeRecord(args, &s); err != nil {
			return 0, err
		}
		return b.Sites().Create(&s)
	},
	update: func(b *sqlite.Backend, id int64, p types.Patch) error { return b.Sites().Update(id, p) },
	delete: func(b *sqlite.Backend, id int64) error { return b.Sites().Delete(id) },
}

func newSiteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "site",
		Aliases: []string{"sites"},
		Short:   "Manage trunked system sites",
	}
	list := &cobra.Command{
		Use:   "list [filter...]",
		Short: "List sites",
		Long:  "Filter keys: system_id, county, state, active",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter types.SiteFilter
			if err := decodeFilter(args, &filter); err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				sites, err := b.Sites().List(&filter)
				if err != nil {
					return err
				}
				return a.emit(cmd, sites, func(w io.Writer) {
					rows := make([][]string, len(sites))
					for i, s := range sites {
						rows[i] = []string{idString(s.ID), idString(s.SystemID), s.SiteID, s.Name, opt(s.County), opt(s.State)}
					}
					printTable(w, []string{"ID", "SYSTEM", "SITE ID", "NAME", "COUNTY", "STATE"}, rows, "sites")
				})
			})
		},
	}
	cmd.AddCommand(list,
		newAddCmd(a, siteCrud, `  omnibus site add system_id=1 site_id=001 name=Downtown county=Jackson state=MO`),
		newUpdateCmd(a, siteCrud),
		newDeleteCmd(a, siteCrud, ""),
	)
	return cmd
}

var talkgroupCrud = crud{
	noun: "talkgroup",
	create: func(b *sqlite.Backend, args []string) (int64, error) {
		tg := types.Talkgroup{Active: true}
		if err := decodeRecord(args, &tg); err != nil {
			return 0, err
		}
		return b.Talkgroups().Create(&tg)
	},
	update: func(b *sqlite.Backend, id int64, p types.Patch) error { return b.Talkgroups().Update(id, p) },
	delete: func(b *sqlite.Backend, id int64) error { return b.Talkgroups().Delete(id) },
}

func newTalkgroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "talkgroup",
		Aliases: []string{"talkgroups", "tg"},
		Short:   "Manage talkgroups",
	}
	list := &cobra.Command{
		Use:   "list [filter...]",
		Short: "List talkgroups",
		Long:  "Filter keys: system_id, category, mode, active, search",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter types.TalkgroupFilter
			if err := decodeFilter(args, &filter); err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				tgs, err := b.Talkgroups().List(&filter)
				if err != nil {
					return err
				}
				return a.emit(cmd, tgs, func(w io.Writer) {
					rows := make([][]string, len(tgs))
					for i, tg := range tgs {
						rows[i] = []string{idString(tg.ID), idString(tg.SystemID), idString(tg.DecimalID), tg.AlphaTag, opt(tg.Category)}
					}
					printTable(w, []string{"ID", "SYSTEM", "DECIMAL", "ALPHA TAG", "CATEGORY"}, rows, "talkgroups")
				})
			})
		},
	}
	cmd.AddCommand(list,
		newAddCmd(a, talkgroupCrud, `  omnibus talkgroup add system_id=1 decimal_id=1001 alpha_tag="KCPD 1" category="Law Dispatch"`),
		newUpdateCmd(a, talkgroupCrud),
		newDeleteCmd(a, talkgroupCrud, ""),
	)
	return cmd
}
