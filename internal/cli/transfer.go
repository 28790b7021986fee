package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/habitgrid/internal/importer"
	"github.com/tOgg1/habitgrid/internal/transfer"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import habits from a file",
		Long: `Import habits from a markdown list or a JSON/YAML export.

Markdown lists add missing habits in order. Exports also merge completions and
colors; existing completions are never cleared. FILE defaults to the configured
habits file; "-" reads standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				path := a.cfg.HabitsFilePath()
				if len(args) == 1 {
					path = args[0]
				}
				if strings.TrimSpace(path) == "" {
					return fmt.Errorf("no file given and display.habits_file is empty")
				}

				f := transfer.FormatForPath(path)
				if format != "" {
					parsed, err := transfer.ParseFormat(format)
					if err != nil {
						return err
					}
					f = parsed
				}

				data, err := readInput(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if f == transfer.FormatMarkdown {
					added := importer.Apply(a.registry, importer.Parse(string(data)))
					fmt.Fprintf(out, "Imported %d habit(s)\n", len(added))
					return nil
				}

				doc, err := transfer.Decode(data, f)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				res := transfer.Merge(a.registry, doc)
				fmt.Fprintf(out, "Imported %d habit(s), %d completion(s), %d color(s)\n",
					len(res.Added), res.Completions, res.Colors)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input format (markdown, json, yaml); default from the file extension")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export habits and completions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := transfer.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				doc := a.registry.Snapshot()
				if output == "" || output == "-" {
					return transfer.Write(cmd.OutOrStdout(), doc, f)
				}
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				if err := transfer.Write(file, doc, f); err != nil {
					_ = file.Close()
					return err
				}
				return file.Close()
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml, markdown)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of standard output")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
