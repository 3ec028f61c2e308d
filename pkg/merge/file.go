package merge

import (
	"fmt"
	"time"

	"github.com/yumyai/genemerge/logger"
	"github.com/yumyai/genemerge/pkg/annotate"
	"github.com/yumyai/genemerge/pkg/gzfile"
	"go.uber.org/zap"
)

// MergeFile extends the gzip record file at datasetPath into a new gzip
// file at outPath.
func MergeFile(idx annotate.Indexes, datasetPath, outPath string) (Stats, error) {
	logger.Info("Extending dataset", zap.String("input", datasetPath))
	start := time.Now()

	approx, err := gzfile.EstimateRecords(datasetPath)
	if err != nil {
		return Stats{}, fmt.Errorf("estimate %s: %w", datasetPath, err)
	}
	logger.Info("Approx. number of records", zap.Int("approx", approx))

	in, err := gzfile.Open(datasetPath)
	if err != nil {
		return Stats{}, err
	}
	defer in.Close()

	out, err := gzfile.Create(outPath)
	if err != nil {
		return Stats{}, err
	}

	stats, err := NewDriver(idx).Run(in, out, approx)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return stats, fmt.Errorf("merge %s: %w", datasetPath, err)
	}

	logger.Info("Done",
		zap.String("output", outPath),
		zap.Int("lines", stats.Lines),
		zap.Int("records", stats.Records),
		zap.Int("with_pdb", stats.WithPDB),
		zap.Int("with_3dm", stats.With3DM),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stats, nil
}
