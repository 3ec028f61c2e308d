package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/yumyai/genemerge/internal/config"
	"github.com/yumyai/genemerge/logger"
	"github.com/yumyai/genemerge/pkg/annotate"
	"github.com/yumyai/genemerge/pkg/db"
	"github.com/yumyai/genemerge/pkg/hits"
	"github.com/yumyai/genemerge/pkg/merge"
	"github.com/yumyai/genemerge/pkg/refindex"
	"go.uber.org/zap"
)

const Version = "0.1.0"

var cfg config.Config

func init() {
	if !config.LoadDotEnv() {
		// Logger is not up yet; this is reported once it is.
		dotenvMissing = true
	}
	cfg = config.FromEnv()

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error) [$"+config.EnvLogLevel+"]")
	f.StringVar(&cfg.Ledger, "ledger", cfg.Ledger, "SQLite run ledger; empty disables it [$"+config.EnvLedger+"]")

	rootCmd.Flags().StringVar(&cfg.TDMDir, "3dm-dir", cfg.TDMDir, "directory of 3DM family metadata JSON files [$"+config.EnvTDMDir+"]")
	rootCmd.Flags().StringVar(&cfg.TDMAnnotation, "3dm-annotation", cfg.TDMAnnotation,
		"tab-separated 3DM alignments, sorted by evalue (best hits first) [$"+config.EnvTDMAnnotation+"]")
	rootCmd.Flags().StringVar(&cfg.PDBIDMap, "pdb-idmap", cfg.PDBIDMap,
		"PDB compound index, e.g. ftp://ftp.wwpdb.org/pub/pdb/derived_data/index/compound.idx [$"+config.EnvPDBIDMap+"]")
	rootCmd.Flags().StringVar(&cfg.PDBAnnotation, "pdb-annotation", cfg.PDBAnnotation,
		"tab-separated PDB alignments, sorted by evalue (best hits first) [$"+config.EnvPDBAnnotation+"]")
}

var dotenvMissing bool

var rootCmd = &cobra.Command{
	Use:     "genemerge DATASET_FILE OUT_FILE",
	Short:   "Merge 3DM and PDB annotations into a .genes.json.gz dataset",
	Version: Version,
	Args:    cobra.ExactArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		if err := logger.InitLogger(level); err != nil {
			return err
		}
		if dotenvMissing {
			logger.Debug("No .env found, using local environment")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.DatasetFile = args[0]
		cfg.OutFile = args[1]
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runMerge(cmd.Context(), cfg)
	},
	SilenceUsage: true,
}

func runMerge(ctx context.Context, cfg config.Config) (err error) {
	logger.Info("Start", zap.String("version", Version))

	var sum db.Summary
	if cfg.Ledger != "" {
		ledger, lerr := db.OpenLedger(cfg.Ledger)
		if lerr != nil {
			return lerr
		}
		defer ledger.Close()

		runID, lerr := ledger.Begin(ctx, db.Inputs{
			Dataset:       cfg.DatasetFile,
			Output:        cfg.OutFile,
			TDMDir:        cfg.TDMDir,
			TDMAnnotation: cfg.TDMAnnotation,
			PDBIDMap:      cfg.PDBIDMap,
			PDBAnnotation: cfg.PDBAnnotation,
		})
		if lerr != nil {
			return lerr
		}
		logger.Info("Recording run", zap.String("run_id", runID), zap.String("ledger", cfg.Ledger))
		defer func() {
			if ferr := ledger.Finish(ctx, runID, sum, err); ferr != nil {
				logger.Error("Could not record run outcome", zap.String("run_id", runID), zap.Error(ferr))
			}
		}()
	}

	idx, err := loadIndexes(cfg, &sum)
	if err != nil {
		return err
	}

	stats, err := merge.MergeFile(idx, cfg.DatasetFile, cfg.OutFile)
	sum.Lines = stats.Lines
	sum.Records = stats.Records
	sum.WithPDB = stats.WithPDB
	sum.With3DM = stats.With3DM
	sum.PDBUnlabeled = stats.PDBUnlabeled
	return err
}

// loadIndexes builds every lookup table before the streaming pass, in the
// same order as the original tool's log output.
func loadIndexes(cfg config.Config, sum *db.Summary) (annotate.Indexes, error) {
	var idx annotate.Indexes
	var err error

	if idx.Families, err = refindex.LoadFamilies(cfg.TDMDir); err != nil {
		return idx, err
	}
	sum.Families = idx.Families.Len()

	if idx.Structures, err = refindex.LoadStructures(cfg.PDBIDMap); err != nil {
		return idx, err
	}
	sum.Structures = idx.Structures.Len()

	if idx.TDMHits, err = hits.Load(cfg.TDMAnnotation, "3DM", hits.DefaultOptions); err != nil {
		return idx, err
	}
	sum.TDMGenes, sum.TDMHits = idx.TDMHits.Len(), idx.TDMHits.Hits()

	if idx.PDBHits, err = hits.Load(cfg.PDBAnnotation, "PDB", hits.DefaultOptions); err != nil {
		return idx, err
	}
	sum.PDBGenes, sum.PDBHits = idx.PDBHits.Len(), idx.PDBHits.Hits()

	return idx, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		logger.Error("Merge failed", zap.Error(err))
	}
	_ = logger.Sync() // Make sure that the buffered is flushed.

	switch {
	case err == nil:
	case errors.Is(err, config.ErrInvalidConfig):
		os.Exit(2)
	default:
		os.Exit(1)
	}
}
