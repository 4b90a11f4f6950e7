package internal

import (
	"context"

	"github.com/goplus/lwipbuild/internal/build"
	"github.com/goplus/lwipbuild/internal/env"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lwipbuild",
	Short: "lwipbuild builds the vendored lwIP stack for the current Go target",
	Long: `lwipbuild compiles the vendored lwIP sources into liblwip.a and generates
cgo bindings for them. The target is taken from LWIPBUILD_TARGET_OS and
LWIPBUILD_TARGET_ARCH, falling back to GOOS and GOARCH.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps := build.DefaultDeps(cfg)
	deps.Signals = cmd.OutOrStdout()
	_, err = build.Run(context.Background(), cfg, deps)
	return err
}

// loadConfig reads the environment and sets the log level from it.
func loadConfig() (*env.Config, error) {
	cfg, err := env.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		log.SetOutputLevel(log.Ldebug)
	} else {
		log.SetOutputLevel(log.Linfo)
	}
	return cfg, nil
}

// Execute runs the command line. Errors are fatal.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
