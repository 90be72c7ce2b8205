package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Elonsoft/defparser"
	"github.com/Elonsoft/defparser/cast"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSONSchema bool
	cmd := &cobra.Command{
		Use:   "inspect [parser]",
		Short: "Show compiled record definitions",
		Long: `Lists every parser with its operation name and the record definitions it
compiled to. With a parser name only that parser is shown; --jsonschema prints
its JSON Schema projection instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			parsers := reg.Parsers()
			if len(args) == 1 {
				p, err := parserByName(reg, args[0])
				if err != nil {
					return err
				}
				parsers = []*defparser.Parser{p}
			}

			out := cmd.OutOrStdout()
			if asJSONSchema {
				if len(parsers) != 1 {
					return fmt.Errorf("--jsonschema needs exactly one parser")
				}
				return writeIndented(out, parsers[0].JSONSchema())
			}
			for _, p := range parsers {
				fmt.Fprintf(out, "%s (%s)\n", p.Name(), p.Operation())
				for _, d := range p.Definitions() {
					fmt.Fprintf(out, "  %s\n", d)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSONSchema, "jsonschema", false, "Print the JSON Schema of the parser")
	return cmd
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered scalar type tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, t := range cast.Types() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}
