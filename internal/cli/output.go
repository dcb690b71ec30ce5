package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/render/nodelink"
)

// Output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatDOT  = "dot"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	formatJSON: true,
	formatYAML: true,
	formatDOT:  true,
}

// renderOpts controls DOT output.
type renderOpts struct {
	detailed bool // add path and value preview to node labels
	pinned   bool // write computed positions as fixed pos attributes
}

// parseFormats parses a comma-separated format string into a slice.
// If empty, defaults to ["json"].
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{formatJSON}
	}
	return out
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if _, ok := validFormats[f]; !ok {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format: %s (must be json, yaml or dot)", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.json, .dot, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, ok := validFormats[strings.TrimPrefix(ext, ".")]; ok {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// encode renders res in the given format. DOT output is parsed back with
// Graphviz before it is returned.
func encode(ctx context.Context, res *pipeline.Result, format string, opts renderOpts) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case formatJSON:
		if err := graph.Write(res.Graph, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatYAML:
		if err := graph.WriteYAML(res.Graph, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatDOT:
		dot := nodelink.ToDOT(res.Graph, res.Theme, nodelink.Options{Detailed: opts.detailed, Pinned: opts.pinned})
		if err := nodelink.Check(ctx, dot, res.Graph); err != nil {
			return nil, err
		}
		return []byte(dot), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", format)
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if err := errors.ValidateOutputPath(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// writeOutput writes data to path (stdout when empty).
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// readInput reads a JSON document from path, or from stdin when path is
// empty or "-". At most max bytes are accepted (zero means the default limit).
func readInput(path string, stdin io.Reader, max int) (string, error) {
	if max <= 0 {
		max = errors.DefaultMaxInputSize
	}

	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
		}
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if err := errors.ValidateInputSize(len(data), max); err != nil {
		return "", err
	}
	return string(data), nil
}

// inputName is how an input is shown to the user.
func inputName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
