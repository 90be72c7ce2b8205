package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Elonsoft/defparser"
	"github.com/Elonsoft/defparser/middleware"
)

// errInvalid is returned when the document has issues. They have already
// been printed, so main only sets the exit status.
var errInvalid = errors.New("document is invalid")

func newValidateCmd(a *app) *cobra.Command {
	var (
		name     string
		format   string
		output   string
		failFast bool
		strict   bool
	)
	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Validate a JSON or YAML document against a parser",
		Long: `Parses the document (stdin when no file or "-" is given) with the named
parser. Valid documents are printed back in their cast form; invalid ones
print every issue with its field path and exit with status 1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--parser is required")
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			p, err := parserByName(reg, name)
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			rec, err := parseDocument(p, data, inputFormat(format, path), defparser.ValidateOpt{FailFast: failFast, RejectDuplicateKeys: strict})
			out := cmd.OutOrStdout()
			if err != nil {
				iss, ok := defparser.AsIssues(err)
				if !ok {
					return err
				}
				a.logger.Debug().Str("parser", p.Name()).Int("issues", len(iss)).Msg("document rejected")
				printIssues(out, iss, output)
				return errInvalid
			}
			return printRecord(out, rec, output)
		},
	}
	cmd.Flags().StringVarP(&name, "parser", "p", "", "Parser name or operation name (e.g. user or parse_user)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format: json or yaml (default: by file extension, json for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first invalid field")
	cmd.Flags().BoolVar(&strict, "strict-keys", false, "Reject JSON objects that repeat a key")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func inputFormat(flag, path string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

func parseDocument(p *defparser.Parser, data []byte, format string, opt defparser.ValidateOpt) (*defparser.Record, error) {
	switch format {
	case "json":
		return p.ParseJSON(data, opt)
	case "yaml":
		return p.ParseYAML(data, opt)
	}
	return nil, fmt.Errorf("unsupported input format %q", format)
}

func printIssues(w io.Writer, iss defparser.Issues, output string) {
	if output == "json" {
		_ = writeIndented(w, middleware.ErrorPayload(iss))
		return
	}
	for _, it := range iss {
		field := defparser.DottedPath(it.Path)
		if field == "" {
			field = "(root)"
		}
		line := fmt.Sprintf("%s: %s", field, it.Message)
		if it.Hint != "" {
			line += " (" + it.Hint + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func printRecord(w io.Writer, rec *defparser.Record, output string) error {
	if output == "json" {
		return writeIndented(w, rec)
	}
	fmt.Fprintf(w, "%s: ok\n", rec.Definition().Name)
	return nil
}

func writeIndented(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
