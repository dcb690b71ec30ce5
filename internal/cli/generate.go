package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output   string // output file (single format) or base path (multiple)
	formats  []string
	theme    string
	maxDepth int
	noCache  bool
	refresh  bool
	render   renderOpts
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var formatsStr string
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [file|-]",
		Short: "Build the node graph of a JSON document",
		Long: `Build the node graph of a JSON document.

Every value in the document becomes a node. Nodes are laid out level by
level: depth sets the row, position among siblings sets the column.
Without a file (or with "-") the document is read from stdin.

A single format goes to stdout unless -o is given. Multiple formats are
written next to the input, or under the base path given with -o. DOT output
is meant for Graphviz-based renderers; jsontree does not draw images.

Results are cached, keyed by document content, theme and depth limit.`,
		Example: `  jsontree generate data.json
  cat data.json | jsontree generate -f yaml
  jsontree generate data.json -f json,dot -o out/data --theme dark`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runGenerate(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), yaml, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "color theme: light, dark (default from config)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum nesting depth (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even when a cached graph exists")
	cmd.Flags().BoolVar(&opts.render.detailed, "detailed", false, "show path and value in dot labels")
	cmd.Flags().BoolVar(&opts.render.pinned, "pinned", false, "pin dot nodes at the computed tree positions")

	_ = cmd.RegisterFlagCompletionFunc("theme", completeThemes)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runGenerate builds the graph and writes every requested format.
func (c *CLI) runGenerate(ctx context.Context, input string, opts generateOpts) error {
	toFiles := opts.output != "" || len(opts.formats) > 1
	if toFiles && opts.output == "" && inputName(input) == "stdin" {
		return errors.New(errors.ErrCodeInvalidPath, "reading from stdin: -o is required for %s output", strings.Join(opts.formats, ","))
	}

	text, err := readInput(input, os.Stdin, c.Config.Server.MaxInputSize)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(opts.theme, opts.maxDepth, opts.refresh)

	var spinner *Spinner
	if toFiles {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s...", inputName(input)))
		spinner.Start()
	}

	prog := newProgress(c.Logger)
	res, err := runner.Generate(ctx, text, popts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Generation failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}
	c.Logger.Debug("graph ready", "hash", res.Hash[:12], "depth", res.Stats.Depth, "cached", res.CacheHit)

	if !toFiles {
		data, err := encode(ctx, res, opts.formats[0], opts.render)
		if err != nil {
			return err
		}
		return writeOutput("", data)
	}

	paths, err := c.writeFormats(ctx, res, input, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %d nodes", res.Stats.NodeCount))

	printSuccess("Generated graph of %s", inputName(input))
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeFormats writes one file per format and returns the written paths.
// With a single format, -o is used as given.
func (c *CLI) writeFormats(ctx context.Context, res *pipeline.Result, input string, opts generateOpts) ([]string, error) {
	base := basePath(opts.output, input)

	var paths []string
	for _, format := range opts.formats {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}

		data, err := encode(ctx, res, format, opts.render)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", format, err)
		}
		c.Logger.Debugf("Encoded %s: %d bytes", format, len(data))
		if err := writeOutput(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
