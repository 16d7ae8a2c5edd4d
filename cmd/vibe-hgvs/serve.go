package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-hgvs/internal/duckdb"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/server"
)

func newServeCmd() *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve HGVS lookups over HTTP",
		Long: `Serve loads the gene model once and answers lookups at
/api/v1/hgvs/{chrom:pos[-end]}. With --results-db, results saved by
'annotate --save-results' are served at /api/v1/transcripts/{id}/results.`,
		Example: `  vibe-hgvs serve --addr :8080
  vibe-hgvs serve --gene-model ncbiRefSeq.txt.gz --results-db results.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd); err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			files, err := resolveModelFiles()
			if err != nil {
				return err
			}
			c, err := loadModel(files, !viper.GetBool("no-model-cache"), logger)
			if err != nil {
				return err
			}

			b := hgvs.NewBuilder(c)
			b.SetFlank(viper.GetInt64("flank"))
			b.SetCanonicalOnly(viper.GetBool("canonical"))
			b.SetLogger(logger)

			var store *duckdb.Store
			if path := viper.GetString("results-db"); path != "" {
				store, err = duckdb.Open(path)
				if err != nil {
					return fmt.Errorf("open results database: %w", err)
				}
				defer store.Close()
			}

			cfg := defaults
			cfg.Addr = viper.GetString("addr")
			cfg.CacheSize = viper.GetInt("cache-size")
			srv, err := server.New(cfg, b, store, logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	addModelFlags(cmd)
	cmd.Flags().String("addr", defaults.Addr, "Listen address")
	cmd.Flags().Int("cache-size", defaults.CacheSize, "Number of lookups kept in memory")
	cmd.Flags().String("results-db", "", "DuckDB database written by 'annotate --save-results'")
	cmd.Flags().Int64("flank", 0, "Also report transcripts within this many bases up- or downstream")
	cmd.Flags().Bool("canonical", false, "Only report canonical transcripts")

	return cmd
}
