// Export command renders catalog views into vendor file formats.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/omnibus/internal/export"
	"github.com/mesh-intelligence/omnibus/internal/sqlite"
	"github.com/mesh-intelligence/omnibus/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		out   string
		radio string
	)
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}

	cmd := &cobra.Command{
		Use:   "export <format>",
		Short: "Export frequencies for a radio or scanner",
		Long: fmt.Sprintf(`Export reads the view that feeds the format and renders it.

Formats: %s

With --radio the exported rows are checked against the radio's frequency
range and modes; problems are printed as warnings and do not stop the
export. --out names a file, or a directory in which the default file name
is used. Relative paths resolve against export.output_dir when it is set.

Example:
  omnibus export chirp --out baofeng.csv --radio "Baofeng UV-5R"
  omnibus export sdrtrunk --out exports/`, strings.Join(names, ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(args[0])
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(b *sqlite.Backend) error {
				src, err := exportSource(b, f)
				if err != nil {
					return err
				}
				if radio != "" {
					r, err := findRadio(b, radio)
					if err != nil {
						return err
					}
					warn(cmd, export.Validate(src.Frequencies, r))
				}
				return a.render(cmd, f, src, out)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default: stdout)")
	cmd.Flags().StringVar(&radio, "radio", "", "radio id or name to validate against")
	return cmd
}

// exportSource reads the rows that feed format f. Formats without a view
// take the active frequencies the format selects.
func exportSource(b *sqlite.Backend, f export.Format) (export.Source, error) {
	var src export.Source
	if view, ok := f.View(); ok {
		freqs, err := b.View(view)
		if err != nil {
			return src, err
		}
		src.Frequencies = freqs
	} else {
		freqs, err := b.Frequencies().List(&types.FrequencyFilter{Active: types.Bool(true)})
		if err != nil {
			return src, err
		}
		for i := range freqs {
			if f.Selects(&freqs[i]) {
				src.Frequencies = append(src.Frequencies, freqs[i])
			}
		}
	}
	if f == export.FormatSDRTrunk {
		trunked, err := b.BusinessTrunked()
		if err != nil {
			return src, err
		}
		src.Trunked = trunked
	}
	return src, nil
}

// render writes the export for f to out, or to stdout when out is empty.
func (a *app) render(cmd *cobra.Command, f export.Format, src export.Source, out string) error {
	data, err := export.Render(f, src)
	if err != nil {
		return err
	}
	if out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	path := out
	if !filepath.IsAbs(path) && a.config.Export.OutputDir != "" {
		path = filepath.Join(a.config.Export.OutputDir, path)
	}
	if info, err := os.Stat(path); (err == nil && info.IsDir()) || strings.HasSuffix(out, string(filepath.Separator)) {
		path = filepath.Join(path, f.FileName())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := sqlite.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	log.WithFields(log.Fields{
		"format": f,
		"rows":   len(src.Frequencies),
		"path":   path,
	}).Debug("export: written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(src.Frequencies), path)
	return nil
}
