package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/ajharbinger/churnguard/internal/scoring"
)

var ruleSetsCmd = &cli.Command{
	Name:    "rulesets",
	Aliases: []string{"rs"},
	Usage:   "Print the loaded rule tables. YAML output can be fed back through --rules.",
	Action:  cmdRuleSets,
}

func cmdRuleSets(ctx context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	sets, err := loadRuleSets(ctx, cmd, newLogger(cmd))
	if err != nil {
		return err
	}

	if format == formatYAML {
		data, err := scoring.MarshalRuleSetsYAML(sets)
		if err != nil {
			return err
		}
		_, err = cmd.Root().Writer.Write(data)
		return err
	}

	return encode(cmd.Root().Writer, format, map[string]any{"rule_sets": sets})
}
