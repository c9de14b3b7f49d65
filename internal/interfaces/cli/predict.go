package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/ctapred/internal/application/predict"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/pkg/errors"
)

// NewPredictCmd creates the predict command, which ranks likely protein
// targets for every query list in the input directory.
func NewPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict protein targets for the query lists in the input directory",
		Long: "Fingerprints every query structure, scores it against the CTA reference\n" +
			"dataset by Tanimoto similarity, and writes one ranked prediction CSV per\n" +
			"query list and top-k value.  A failing query list is reported and skipped;\n" +
			"the remaining lists still run.",
		RunE: runPredict,
	}

	f := cmd.Flags()
	f.String("fingerprint", "", "fingerprint scheme: avalon, ecfp, fcfp, maccs (default: ecfp)")
	f.Int("nbits", 0, "fingerprint length in bits, 8-2048 (default: 2048; maccs is fixed at 116)")
	f.Int("radius", 0, "circular fingerprint radius, 2 or 3 (ecfp/fcfp only; default: 2)")
	f.IntSlice("k", nil, "top-k neighbor counts; one output per value (default: 1)")
	f.Float64("cutoff", 0, "minimum similarity for a query/reference pair, 0-1 (default: 0.1)")

	return cmd
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, store, transcript, err := setupRun(cfg, "predict")
	if err != nil {
		return err
	}
	defer transcript.Close()

	summary, err := predict.NewService(cfg, store, logger).Run(cmd.Context(), transcript)
	if err != nil {
		return err
	}

	// Partial success exits zero; a run where every list failed does not.
	if summary.Failed() > 0 && summary.Succeeded() == 0 {
		logger.Error("all query lists failed", logging.Int("failed", summary.Failed()))
		return errors.Internal("no query list could be processed")
	}
	return nil
}
