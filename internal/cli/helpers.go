// Shared helpers for omnibus CLI commands.
package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-viper/mapstructure/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/omnibus/internal/paths"
	"github.com/mesh-intelligence/omnibus/internal/sqlite"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// attach resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must Detach it.
func (a *app) attach(cmd *cobra.Command) (*sqlite.Backend, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := a.config
	cfg.DataDir = dataDir

	b := sqlite.NewBackend()
	if err := b.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	if b.FellBack() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s could not be opened; started an empty catalog\n", b.Path())
	}
	return b, nil
}

// withBackend runs fn against an attached backend and detaches afterwards.
func (a *app) withBackend(cmd *cobra.Command, fn func(b *sqlite.Backend) error) error {
	b, err := a.attach(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Detach(); err != nil {
			log.WithError(err).Warn("cli: detach backend")
		}
	}()
	return fn(b)
}

// emit writes v as JSON in --json mode, otherwise calls text.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), v)
	}
	text(cmd.OutOrStdout())
	return nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printTable prints rows in a human-readable aligned table followed by a
// total line.
func printTable(w io.Writer, headers []string, rows [][]string, noun string) {
	if len(rows) == 0 {
		fmt.Fprintf(w, "No %s found.\n", noun)
		return
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(w, "Total: %d %s\n", len(rows), noun)
}

// parseID parses a record ID argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, s)
	}
	return id, nil
}

// parseIDs parses a comma-separated list of record IDs.
func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parsePairs splits key=value arguments. A repeated key keeps the last value.
func parsePairs(args []string) (map[string]string, error) {
	pairs := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: invalid argument %q (expected key=value)", types.ErrInvalidData, arg)
		}
		pairs[key] = strings.TrimSpace(value)
	}
	return pairs, nil
}

// decodePairs decodes key=value pairs into out, matching keys against the
// struct tag named tag. Values are converted with weak typing, comma lists
// become slices, and unknown keys are rejected.
func decodePairs(pairs map[string]string, out any, tag string) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tag,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToWeakSliceHookFunc(","),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(pairs)
}

// decodeFilter decodes list filter arguments into a filter struct.
func decodeFilter(args []string, filter any) error {
	pairs, err := parsePairs(args)
	if err != nil {
		return err
	}
	if err := decodePairs(pairs, filter, "mapstructure"); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidFilter, err)
	}
	return nil
}

// decodeRecord decodes key=value arguments into an entity using its JSON
// field names.
func decodeRecord(args []string, record any) error {
	pairs, err := parsePairs(args)
	if err != nil {
		return err
	}
	if err := decodePairs(pairs, record, "json"); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return nil
}

// parsePatch turns key=value arguments into a Patch. An empty value clears
// a nullable column.
func parsePatch(args []string) (types.Patch, error) {
	pairs, err := parsePairs(args)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", types.ErrInvalidData)
	}
	patch := make(types.Patch, len(pairs))
	for k, v := range pairs {
		if v == "" {
			patch[k] = nil
			continue
		}
		patch[k] = v
	}
	return patch, nil
}

func opt(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mhz(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

// errAborted is returned when a confirmation prompt is declined.
var errAborted = errors.New("aborted")

// confirm asks on the command's input before a destructive operation unless
// yes is set. Only "y" or "yes" proceeds; EOF declines.
func confirm(cmd *cobra.Command, yes bool, format string, args ...any) error {
	if yes {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format+" [y/N] ", args...)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return errAborted
}
