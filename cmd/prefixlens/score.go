package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prefixlens/backend/config"
	"github.com/prefixlens/backend/internal/infrastructure/cache"
	"github.com/prefixlens/backend/internal/infrastructure/catalog"
	"github.com/prefixlens/backend/internal/infrastructure/chronicity"
	"github.com/prefixlens/backend/internal/usecase"
)

func newScoreCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Assign a 1-5 purchase-chronicity score to catalog products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if err := cfg.ValidateScoring(); err != nil {
				return err
			}
			return runScore(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "input catalog path")
	flags.StringP("output", "o", "", "scored catalog output path")
	flags.String("cache", "", "score cache JSON path")
	flags.Int("max-items", 0, "maximum uncached products to score (0 = config value)")
	flags.String("model", "", "chat model name")

	_ = v.BindPFlag("scoring.input_path", flags.Lookup("input"))
	_ = v.BindPFlag("scoring.output_path", flags.Lookup("output"))
	_ = v.BindPFlag("scoring.cache_path", flags.Lookup("cache"))
	_ = v.BindPFlag("scoring.model", flags.Lookup("model"))

	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if cmd.Flags().Changed("max-items") {
			n, _ := cmd.Flags().GetInt("max-items")
			v.Set("scoring.max_items", n)
		}
	}

	return cmd
}

func runScore(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	reader := catalog.NewReader(config.Rune(cfg.Input.Delimiter), cfg.Input.CodeColumn, cfg.Input.NameColumn)
	products, err := reader.ReadFile(cfg.Scoring.InputPath)
	if err != nil {
		return err
	}

	store, err := cache.LoadScoreStore(cfg.Scoring.CachePath)
	if err != nil {
		return err
	}

	client := chronicity.NewClient(cfg.Scoring.APIKey, cfg.Scoring.BaseURL, cfg.Scoring.Model,
		cfg.Scoring.RequestsPerSecond, cfg.Scoring.Burst)
	client.SetDebug(cfg.Clustering.Debug)

	svc := usecase.NewScoringService(store, client, usecase.ScoringServiceConfig{
		MaxItems:           cfg.Scoring.MaxItems,
		EnableDebugLogging: cfg.Clustering.Debug,
	})

	report, err := svc.ScoreCatalog(ctx, products.Products)
	if err != nil {
		return err
	}

	writer := catalog.NewWriter(config.Rune(cfg.Output.Delimiter))
	if err := catalog.WriteFile(cfg.Scoring.OutputPath, func(w io.Writer) error {
		return writer.WriteScored(w, products, svc.Lookup)
	}); err != nil {
		return err
	}

	cmd.Printf("Scored %d of %d products (%d failed, %d already cached); wrote %s\n",
		report.Scored, report.Attempted, report.Failed, report.Cached, cfg.Scoring.OutputPath)
	return nil
}
