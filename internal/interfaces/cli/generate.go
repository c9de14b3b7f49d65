package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/ctapred/internal/application/generate"
)

// NewGenerateCmd creates the generate command, which derives the CTA reference
// dataset from the refined activity store.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Derive the CTA reference dataset from the refined activity store",
		Long: "Filters the refined activity store by potency, deduplicates compound-target\n" +
			"pairs, fingerprints every distinct structure, collapses redundant compounds\n" +
			"within each target group, and persists the result as the CTA reference\n" +
			"dataset (parquet data plus metadata).",
		RunE: runGenerate,
	}

	f := cmd.Flags()
	f.String("fingerprint", "", "fingerprint scheme: avalon, ecfp, fcfp, maccs (default: ecfp)")
	f.Int("nbits", 0, "fingerprint length in bits, 8-2048 (default: 2048; maccs is fixed at 116)")
	f.Int("radius", 0, "circular fingerprint radius, 2 or 3 (ecfp/fcfp only; default: 2)")
	f.Float64("sv", 0, "activity threshold in nM, 0.01-10000 (default: 10000)")
	f.Float64("tc", 0, "redundancy similarity threshold, 0.1-1.0 (default: 0.85)")
	f.Bool("force", false, "re-derive even when a CTA dataset already exists")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, store, transcript, err := setupRun(cfg, "generate")
	if err != nil {
		return err
	}
	defer transcript.Close()

	return generate.NewService(cfg, store, logger).Run(cmd.Context(), transcript)
}
