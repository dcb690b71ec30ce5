package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/search"
	"github.com/matzehuels/jsontree/pkg/style"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "search <file|-> <path>",
		Short: "Find the node at a path",
		Long: `Find the node at a path such as $.user.items[1].name.

A leading "$" and the "." after it are optional, so "user.items[1]" and
"$.user.items[1]" find the same node. Surrounding whitespace is ignored.
When nothing matches, the closest paths in the document are suggested.`,
		Example: `  jsontree search data.json '$.user.items[1].name'
  curl -s https://api.example.com/me | jsontree search - user.id --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), args[0], args[1], asJSON, noCache)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, input, query string, asJSON, noCache bool) error {
	text, err := readInput(input, os.Stdin, c.Config.Server.MaxInputSize)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Generate(ctx, text, c.pipelineOptions("", 0, false))
	if err != nil {
		return err
	}

	result, err := runner.Search(ctx, res.Graph, query, res.Theme)
	if result.Outcome == search.OutcomeNone {
		return err
	}

	if asJSON {
		return printSearchJSON(result)
	}
	printSearchResult(result, res.Theme)
	return nil
}

type searchJSON struct {
	Outcome     search.Outcome `json:"outcome"`
	Message     string         `json:"message"`
	ID          string         `json:"id,omitempty"`
	Path        string         `json:"path,omitempty"`
	Kind        string         `json:"kind,omitempty"`
	Value       any            `json:"value,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

func printSearchJSON(r search.Result) error {
	out := searchJSON{Outcome: r.Outcome, Message: r.Message, Suggestions: r.Suggestions}
	if n, ok := r.Match(); ok {
		out.ID, out.Path, out.Kind, out.Value = n.ID, n.Path, string(n.Kind), n.Value
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode result")
	}
	return nil
}

func printSearchResult(r search.Result, theme style.Theme) {
	n, ok := r.Match()
	if !ok {
		fmt.Println(StyleWarning.Render(r.Message))
		for _, s := range r.Suggestions {
			printDetail("did you mean %s", s)
		}
		return
	}

	fmt.Println(StyleSuccess.Render(r.Message))
	printKeyValue("id", n.ID)
	printKeyValue("path", StyleHighlight.Render(n.Path))
	printKeyValue("kind", kindStyle(theme, n.Kind).Render(string(n.Kind)))
	printKeyValue("value", n.Value.Preview(previewWidth))
	printKeyValue("position", fmt.Sprintf("%g, %g", n.Position.X, n.Position.Y))
}
