package internal

import (
	"context"
	"fmt"

	"github.com/goplus/lwipbuild/internal/bindgen"
	"github.com/goplus/lwipbuild/internal/build"
	"github.com/goplus/lwipbuild/internal/sdk"
	"github.com/spf13/cobra"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Show the resolved build target",
	Long: `Target prints the target the build would use, the platform SDK headers
it resolves to and the include path shared by the compiler and the
binding generator.`,
	Args: cobra.NoArgs,
	RunE: runTarget,
}

func init() {
	rootCmd.AddCommand(targetCmd)
}

func runTarget(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tg := cfg.Target
	ptr, err := tg.PointerSize()
	if err != nil {
		return err
	}
	sdkDir, _, err := sdk.Resolve(context.Background(), tg, sdk.Xcrun(cfg.Xcrun))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "target:   %s\n", tg)
	fmt.Fprintf(w, "triple:   %s\n", tg.Triple)
	fmt.Fprintf(w, "pointer:  %d\n", ptr)
	if v := sdk.Variant(tg); v != "" {
		fmt.Fprintf(w, "sdk:      %s\n", v)
	} else {
		fmt.Fprintln(w, "sdk:      none")
	}
	if o, ok := bindgen.TargetOverride(tg); ok {
		fmt.Fprintf(w, "override: --target=%s\n", o)
	}
	fmt.Fprintf(w, "root:     %s\n", cfg.Root)
	fmt.Fprintf(w, "out:      %s\n", cfg.OutDir)
	fmt.Fprintf(w, "bindings: %s\n", cfg.Bindings)
	for _, d := range build.Includes(cfg.Root, sdkDir).Dirs() {
		fmt.Fprintf(w, "include:  %s\n", d)
	}
	return nil
}
