package internal

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goplus/lwipbuild/internal/build"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last successful build of the current target",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec, err := build.LoadRecord(cfg.OutDir)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s has not been built in %s", cfg.Target, cfg.OutDir)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "target:   %s (%s)\n", rec.Target, rec.Target.Triple)
	if rec.LwIP != "" {
		fmt.Fprintf(w, "lwip:     %s\n", rec.LwIP)
	}
	fmt.Fprintf(w, "archive:  %s\n", rec.Archive)
	fmt.Fprintf(w, "bindings: %s\n", rec.Bindings)
	fmt.Fprintf(w, "built:    %s\n", rec.BuildTime.Format(time.RFC3339))
	return nil
}
