// Package cli implements the omnibus command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/omnibus/internal/paths"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by the subcommands of one root command. It is
// filled in by the root's PersistentPreRunE.
type app struct {
	flags     rootFlags
	configDir string
	config    types.Config
}

// NewRootCmd creates the top-level "omnibus" command with global flags
// and all subcommands registered. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "omnibus",
		Short: "Kansas City radio frequency catalog",
		Long: `Omnibus keeps a catalog of conventional frequencies, trunked systems,
counties and radio profiles in a local SQLite file, and exports it to
scanner and SDR formats (CHIRP, Uniden, SDRTrunk, OpenGD77, SDR++).`,
		Version: Version,
		// Do not print usage or the error on failures returned by
		// subcommands; Execute reports them.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.omnibus-db)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newFreqCmd(a),
		newSystemCmd(a),
		newSiteCmd(a),
		newTalkgroupCmd(a),
		newCountyCmd(a),
		newRadioCmd(a),
		newProfileCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSettingsCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
	)
	return root
}

// load resolves the config directory, reads config.yaml and configures
// logging. The version command needs none of it.
func (a *app) load(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(dir)
	if err != nil {
		return err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return err
	}
	if err := configureLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}
	a.configDir = dir
	a.config = cfg
	return nil
}

// Execute runs the root command and exits with the appropriate code. An
// interrupt cancels the command's context, which rolls back a running
// import.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "omnibus:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps an error to the process exit status. Validation and lookup
// failures are the caller's fault; engine and filesystem failures are not.
// Anything else, including cobra's argument errors, counts as a user error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, types.ErrInvalidFlag),
		errors.Is(err, types.ErrInvalidSnapshot):
		return exitUserError
	case types.IsStoreError(err), errors.Is(err, types.ErrBackendDetached):
		return exitSysError
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return exitSysError
	}
	return exitUserError
}
