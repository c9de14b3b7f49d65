package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/ctapred/internal/application/update"
)

var (
	updateChEMBLPath string
	updateNPsPath    string
)

// NewUpdateCmd creates the update command, which refreshes the persistent
// stores from upstream datasets.
func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh the persistent stores from upstream datasets",
		Long: "Extracts single-protein nM activities from a ChEMBL SQLite dump into the\n" +
			"refined activity store, and/or replaces the natural-products structure store\n" +
			"from a CSV export.  At least one of --chembl or --nps is required.",
		RunE: runUpdate,
	}

	f := cmd.Flags()
	f.StringVar(&updateChEMBLPath, "chembl", "", "path to a ChEMBL SQLite dump")
	f.StringVar(&updateNPsPath, "nps", "", "path to a natural-products structure CSV")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, store, transcript, err := setupRun(cfg, "update")
	if err != nil {
		return err
	}
	defer transcript.Close()

	opts := update.Options{
		ChEMBLPath: updateChEMBLPath,
		NPsPath:    updateNPsPath,
	}
	return update.NewService(cfg, store, logger).Run(cmd.Context(), transcript, opts)
}
