package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ajharbinger/churnguard/internal/models"
	"github.com/ajharbinger/churnguard/internal/predictor"
	"github.com/ajharbinger/churnguard/internal/services"
	"github.com/ajharbinger/churnguard/pkg/config"
)

var (
	variantFlag = &cli.StringFlag{
		Name:  "variant",
		Usage: "Dashboard variant [standard, mobile, model]",
		Value: string(models.VariantStandard),
	}

	modelDirFlag = &cli.StringFlag{
		Name:    "model-dir",
		Usage:   "Directory with the classifier artifacts, required for --variant model",
		Sources: cli.EnvVars("MODEL_DIR"),
	}

	ruleSetFlag = &cli.StringFlag{
		Name:  "rule-set",
		Usage: "Score with this rule set instead of the variant's own (optional)",
	}

	ageFlag         = &cli.IntFlag{Name: "age", Usage: "Customer age (18-92)"}
	genderFlag      = &cli.StringFlag{Name: "gender", Usage: "Female or Male"}
	geographyFlag   = &cli.StringFlag{Name: "geography", Usage: "France, Germany or Spain"}
	creditScoreFlag = &cli.IntFlag{Name: "credit-score", Usage: "Credit score (350-850)"}
	balanceFlag     = &cli.FloatFlag{Name: "balance", Usage: "Account balance (0-300000)"}
	salaryFlag      = &cli.FloatFlag{Name: "salary", Usage: "Estimated salary (0-250000)"}
	tenureFlag      = &cli.IntFlag{Name: "tenure", Usage: "Years with the bank (0-10)"}
	productsFlag    = &cli.IntFlag{Name: "products", Usage: "Number of products (1-4)"}
	hasCardFlag     = &cli.BoolFlag{Name: "has-card", Usage: "Customer holds a credit card"}
	activeFlag      = &cli.BoolFlag{Name: "active", Usage: "Customer is an active member"}

	assessCmd = &cli.Command{
		Name:  "assess",
		Usage: "Score one customer profile. Unset profile flags take the variant's form defaults.",
		Flags: []cli.Flag{
			variantFlag,
			modelDirFlag,
			ruleSetFlag,
			ageFlag,
			genderFlag,
			geographyFlag,
			creditScoreFlag,
			balanceFlag,
			salaryFlag,
			tenureFlag,
			productsFlag,
			hasCardFlag,
			activeFlag,
		},
		Action: cmdAssess,
	}
)

func cmdAssess(ctx context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	variant, err := models.ParseVariant(cmd.String(variantFlag.Name))
	if err != nil {
		return err
	}

	profile, err := profileFromFlags(cmd, models.DefaultProfileFor(variant))
	if err != nil {
		return err
	}

	log := newLogger(cmd)

	ruleSets, err := loadRuleSets(ctx, cmd, log)
	if err != nil {
		return err
	}

	var artifacts *predictor.Artifacts
	if dir := cmd.String(modelDirFlag.Name); dir != "" {
		if artifacts, err = predictor.LoadArtifacts(dir); err != nil {
			return err
		}
	}

	svc, err := services.NewServices(&config.Config{DefaultVariant: string(variant)}, services.Dependencies{
		RuleSets:  ruleSets,
		Artifacts: artifacts,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	report, err := svc.Assessment.Assess(ctx, services.AssessmentRequest{
		Variant:   variant,
		RuleSetID: cmd.String(ruleSetFlag.Name),
		Profile:   profile,
	})
	if err != nil {
		return err
	}

	return encode(cmd.Root().Writer, format, report)
}

// profileFromFlags overrides base with every profile flag the user set
func profileFromFlags(cmd *cli.Command, base models.CustomerProfile) (models.CustomerProfile, error) {
	p := base

	if cmd.IsSet(ageFlag.Name) {
		p.Age = int(cmd.Int(ageFlag.Name))
	}
	if cmd.IsSet(genderFlag.Name) {
		g, err := models.ParseGender(cmd.String(genderFlag.Name))
		if err != nil {
			return p, fmt.Errorf("--%s: %w", genderFlag.Name, err)
		}
		p.Gender = g
	}
	if cmd.IsSet(geographyFlag.Name) {
		g, err := models.ParseGeography(cmd.String(geographyFlag.Name))
		if err != nil {
			return p, fmt.Errorf("--%s: %w", geographyFlag.Name, err)
		}
		p.Geography = g
	}
	if cmd.IsSet(creditScoreFlag.Name) {
		p.CreditScore = int(cmd.Int(creditScoreFlag.Name))
	}
	if cmd.IsSet(balanceFlag.Name) {
		p.Balance = cmd.Float(balanceFlag.Name)
	}
	if cmd.IsSet(salaryFlag.Name) {
		p.EstimatedSalary = cmd.Float(salaryFlag.Name)
	}
	if cmd.IsSet(tenureFlag.Name) {
		p.Tenure = int(cmd.Int(tenureFlag.Name))
	}
	if cmd.IsSet(productsFlag.Name) {
		p.NumOfProducts = int(cmd.Int(productsFlag.Name))
	}
	if cmd.IsSet(hasCardFlag.Name) {
		p.HasCrCard = cmd.Bool(hasCardFlag.Name)
	}
	if cmd.IsSet(activeFlag.Name) {
		p.IsActiveMember = cmd.Bool(activeFlag.Name)
	}

	return p, nil
}
