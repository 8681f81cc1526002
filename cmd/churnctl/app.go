package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/ajharbinger/churnguard/internal/database"
	"github.com/ajharbinger/churnguard/internal/logger"
	"github.com/ajharbinger/churnguard/internal/repository"
	"github.com/ajharbinger/churnguard/internal/scoring"
	"github.com/ajharbinger/churnguard/internal/services"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs to stderr (optional, default: false)",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	rulesFlag = &cli.StringFlag{
		Name:    "rules",
		Usage:   "YAML or JSON rule-set file layered over the built-in tables",
		Sources: cli.EnvVars("RULESET_FILE"),
	}

	databaseURLFlag = &cli.StringFlag{
		Name:    "database-url",
		Usage:   "Postgres URL with additional rule sets (optional)",
		Sources: cli.EnvVars("DATABASE_URL"),
	}
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "churnctl",
		Version: version,
		Usage:   "Score customer churn risk from the command line",
		Flags: []cli.Flag{
			debugFlag,
			formatFlag,
			rulesFlag,
			databaseURLFlag,
		},
		Commands: []*cli.Command{
			assessCmd,
			ruleSetsCmd,
		},
	}
}

func newLogger(cmd *cli.Command) logger.Logger {
	if !cmd.Bool(debugFlag.Name) {
		return logger.NewNop()
	}
	return logger.NewWithWriter(cmd.Root().ErrWriter, logger.Config{Level: "debug"})
}

// loadRuleSets layers the file and database sources over the built-ins
func loadRuleSets(ctx context.Context, cmd *cli.Command, log logger.Logger) ([]scoring.RuleSet, error) {
	var repo repository.RuleSetRepository
	if url := cmd.String(databaseURLFlag.Name); url != "" {
		db, err := database.New(url)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		repo = repository.NewRuleSetRepository(db)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return services.LoadRuleSets(ctx, cmd.String(rulesFlag.Name), repo, log)
}

func outputFormat(cmd *cli.Command) (string, error) {
	switch f := cmd.String(formatFlag.Name); f {
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q, expected json or yaml", f)
	}
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
