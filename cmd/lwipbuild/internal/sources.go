package internal

import (
	"fmt"
	"io"

	"github.com/goplus/lwipbuild/internal/env"
	"github.com/goplus/lwipbuild/internal/srcset"
	"github.com/spf13/cobra"
)

var sourcesExcluded bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the lwIP units compiled into the archive",
	Long: `Sources prints the curated lwIP source set in compile order, followed by
the platform glue units. With --excluded it prints the units deliberately
left out and the reason for each.`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().BoolVarP(&sourcesExcluded, "excluded", "x", false, "List excluded units instead")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	set := &srcset.LwIP
	if err := set.Validate(); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if sourcesExcluded {
		printUnits(w, set.Excluded, true)
		return nil
	}

	fmt.Fprintf(w, "# lwIP >= %s", set.MinVersion)
	// The vendored version is informative only; a missing tree is not an error.
	if cfg, err := env.Load(); err == nil {
		if ver, err := srcset.StackVersion(cfg.Root); err == nil {
			fmt.Fprintf(w, ", vendored %s", ver)
		}
	}
	fmt.Fprintln(w)
	printUnits(w, set.Units(), false)
	return nil
}

func printUnits(w io.Writer, units []srcset.Unit, reasons bool) {
	for _, u := range units {
		if reasons && u.Reason != "" {
			fmt.Fprintf(w, "%s\t# %s\n", u.Path, u.Reason)
			continue
		}
		fmt.Fprintln(w, u.Path)
	}
}
