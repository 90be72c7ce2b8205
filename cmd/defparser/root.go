package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Elonsoft/defparser"
	"github.com/Elonsoft/defparser/i18n"
	"github.com/Elonsoft/defparser/internal/config"
	"github.com/Elonsoft/defparser/internal/logging"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	cfgPath  string
	logLevel string
	lang     string
	schemas  []string // name=path

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "defparser",
		Short:         "Compile nested record schemas and validate documents against them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.lang, "lang", "", "Message language: en or ja")
	root.PersistentFlags().StringArrayVarP(&a.schemas, "schema", "s", nil, "Schema file as name=path (repeatable, defined in order)")

	root.AddCommand(
		newValidateCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newTypesCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.cfgPath != "" {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	} else {
		a.cfg = config.Default()
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	if a.lang != "" {
		a.cfg.Language = a.lang
	}
	i18n.SetLanguage(a.cfg.Language)
	a.logger = logging.New(a.cfg.Logging.Level, a.cfg.Logging.Format, cmd.ErrOrStderr())
	return nil
}

// sources lists the schema files of the configuration followed by the ones
// given with --schema.
func (a *app) sources() ([]config.SchemaConfig, error) {
	sources := append([]config.SchemaConfig(nil), a.cfg.Schemas...)
	for _, s := range a.schemas {
		name, path, ok := strings.Cut(s, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("--schema %q: expected name=path", s)
		}
		sources = append(sources, config.SchemaConfig{Name: name, Path: path})
	}
	return sources, nil
}

// registry defines a fresh parser for every schema source, in order.
func (a *app) registry() (*defparser.Registry, error) {
	sources, err := a.sources()
	if err != nil {
		return nil, err
	}
	reg := defparser.NewRegistry()
	for _, src := range sources {
		if err := defineFromFile(reg, src.Name, src.Path); err != nil {
			return nil, err
		}
		a.logger.Debug().Str("parser", src.Name).Str("path", src.Path).Msg("parser defined")
	}
	return reg, nil
}

func defineFromFile(reg *defparser.Registry, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", name, err)
	}
	var lit defparser.Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		lit, err = defparser.LoadSchemaJSON(data, reg)
	default:
		lit, err = defparser.LoadSchemaYAML(data, reg)
	}
	if err != nil {
		return fmt.Errorf("load schema %s (%s): %w", name, path, err)
	}
	if _, err := reg.Define(name, lit); err != nil {
		return fmt.Errorf("define %s: %w", name, err)
	}
	return nil
}

// parserByName resolves a parser by declared or operation name.
func parserByName(reg *defparser.Registry, name string) (*defparser.Parser, error) {
	if p, ok := reg.Parser(name); ok {
		return p, nil
	}
	if p, ok := reg.Lookup(name); ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown parser %q", name)
}
