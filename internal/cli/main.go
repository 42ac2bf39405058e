package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/ayatreel/internal/config"
)

func Main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "ayatreel",
		Short:        "Compose short Quran recitation videos with timed text overlays",
		SilenceUsage: true,
	}
	root.SilenceErrors = true

	root.PersistentFlags().String("tuning", "", "YAML file overriding timing, layout and detection defaults")
	root.PersistentFlags().BoolP("verbose", "v", false, "Development logging")

	root.AddCommand(newGenerateCmd(), newPlanCmd(), newASSCmd())
	return root
}

func loadTuning(cmd *cobra.Command) (config.Tuning, error) {
	path, _ := cmd.Flags().GetString("tuning")
	t, err := config.Load(path)
	if err != nil {
		return config.Tuning{}, fmt.Errorf("config: %w", err)
	}
	return t, nil
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
