// Settings, backup and restore commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/omnibus/internal/sqlite"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"setting"},
		Short:   "Read and write application settings",
	}

	var def string
	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting, or the default when it is unset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				v, err := b.GetSetting(args[0], def)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), v)
			})
		},
	}
	get.Flags().StringVar(&def, "default", "", "value printed when the key is unset")

	var typ string
	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Long: `Set stores a value under key. --type selects how the value is parsed on
read: string (default), number, boolean or json.

Example:
  omnibus settings set activeTab frequencies
  omnibus settings set darkMode true --type boolean
  omnibus settings set modals '{"import":false}' --type json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := types.SettingType(typ)
			v, err := parseSettingArg(args[1], st)
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if err := b.SetSetting(args[0], v, st); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
				return nil
			})
		},
	}
	set.Flags().StringVar(&typ, "type", string(types.SettingString), "value type: string, number, boolean, json")

	del := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if err := b.DeleteSetting(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				settings, err := b.AllSettings()
				if err != nil {
					return err
				}
				return a.emit(cmd, settings, func(w io.Writer) {
					rows := make([][]string, len(settings))
					for i, s := range settings {
						rows[i] = []string{s.Key, fmt.Sprint(s.Value), string(s.Type)}
					}
					printTable(w, []string{"KEY", "VALUE", "TYPE"}, rows, "settings")
				})
			})
		},
	}

	cmd.AddCommand(get, set, del, list)
	return cmd
}

// parseSettingArg converts a command-line value to the Go value SetSetting
// expects for typ.
func parseSettingArg(s string, typ types.SettingType) (any, error) {
	switch typ {
	case types.SettingNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", types.ErrInvalidData, s)
		}
		return f, nil
	case types.SettingBoolean:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", types.ErrInvalidData, s)
		}
		return v, nil
	case types.SettingJSON:
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
		}
		return v, nil
	case types.SettingString:
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown setting type %q", types.ErrInvalidData, typ)
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file]",
		Short: "Write a consistent snapshot of the catalog",
		Long: `Backup writes a compacted copy of the database. Without a file argument
the snapshot goes next to the database under a unique name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				path := filepath.Join(filepath.Dir(b.Path()), sqlite.SnapshotName())
				if len(args) == 1 {
					path = args[0]
				}
				data, err := b.Backup()
				if err != nil {
					return err
				}
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return fmt.Errorf("create backup directory: %w", err)
				}
				if err := sqlite.WriteFileAtomic(path, data); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d bytes to %s\n", len(data), path)
				return nil
			})
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the catalog with a snapshot",
		Long:  "Restore replaces every table with the contents of a snapshot written by backup.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				if err := b.Restore(data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
				return nil
			})
		},
	}
}
