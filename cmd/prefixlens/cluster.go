package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prefixlens/backend/config"
	"github.com/prefixlens/backend/internal/domain"
	"github.com/prefixlens/backend/internal/infrastructure/catalog"
	"github.com/prefixlens/backend/internal/infrastructure/sqlite"
	"github.com/prefixlens/backend/internal/usecase"
)

func newClusterCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Split product names into common string and variation and write the grouped tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return runCluster(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "input catalog path")
	flags.StringP("output-dir", "o", "", "directory for the output tables")
	flags.String("sqlite", "", "also write the tables into this SQLite file")
	flags.IntP("workers", "w", 0, "parallel bucket workers (0 = one per CPU)")
	flags.Bool("raw-bucket-key", false, "bucket on the first token without upper-casing it")

	_ = v.BindPFlag("input.path", flags.Lookup("input"))
	_ = v.BindPFlag("output.dir", flags.Lookup("output-dir"))
	_ = v.BindPFlag("output.sqlite_path", flags.Lookup("sqlite"))
	_ = v.BindPFlag("clustering.workers", flags.Lookup("workers"))

	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if raw, _ := cmd.Flags().GetBool("raw-bucket-key"); raw {
			v.Set("clustering.normalize_bucket_key", false)
		}
	}

	return cmd
}

func runCluster(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	reader := catalog.NewReader(config.Rune(cfg.Input.Delimiter), cfg.Input.CodeColumn, cfg.Input.NameColumn)
	products, err := reader.ReadFile(cfg.Input.Path)
	if err != nil {
		return err
	}

	svc := usecase.NewClusteringService(usecase.ClusteringServiceConfig{
		Workers:            cfg.Clustering.Workers,
		NormalizeBucketKey: cfg.Clustering.NormalizeBucketKey,
		Stopwords:          cfg.Clustering.Stopwords,
		EnableDebugLogging: cfg.Clustering.Debug,
	})

	result, err := svc.Cluster(ctx, products)
	if err != nil {
		return err
	}

	exporters := []domain.ResultExporter{
		catalog.NewFileExporter(catalog.NewWriter(config.Rune(cfg.Output.Delimiter)), cfg.Output.Dir, catalog.FileNames{
			Full:     cfg.Output.FullFile,
			Grouped:  cfg.Output.GroupedFile,
			Expanded: cfg.Output.ExpandedFile,
		}),
	}
	if cfg.Output.SQLitePath != "" {
		exporters = append(exporters, sqlite.NewExporter(cfg.Output.SQLitePath))
	}

	for _, e := range exporters {
		if err := e.Export(ctx, products, result); err != nil {
			return err
		}
	}

	cmd.Printf("Generated:\n - %s (full rows)\n - %s (one row per common string)\n - %s (one row per common string + code + variation)\n",
		cfg.Output.FullFile, cfg.Output.GroupedFile, cfg.Output.ExpandedFile)
	return nil
}
