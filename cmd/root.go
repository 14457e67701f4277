package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gridpatch/gridpatch/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:           "gridpatch",
	Short:         "Apply cell edits to workbooks and save them without corruption",
	Version:       Version,
	SilenceErrors: true,
	Long: `gridpatch merges a set of cell edits into an existing workbook and
replaces the file through a backup + temp-write + rename sequence, so a
failure at any step leaves the original intact.

Commands:
  apply   Apply edits and save the workbook.
  get     Print cell values from a range.
  sheets  List sheets and their sizes.
  diff    Compare two workbooks cell by cell.
  config  Manage persistent preferences.

Output:
  default  Human-friendly summaries on stdout, notes on stderr
  --json   JSON output for automation`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-formatted summaries")
}

// resolveKeepBackup resolves the backup preference from, in order: an
// explicitly set flag, the GRIDPATCH_KEEP_BACKUP environment variable, the
// config file.
func resolveKeepBackup(f *pflag.Flag) bool {
	if f != nil && f.Changed {
		return applyKeepBackup
	}
	switch os.Getenv("GRIDPATCH_KEEP_BACKUP") {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	cfg, err := config.Load()
	if err != nil {
		return false
	}
	return cfg.KeepBackup
}

func Execute() error {
	return rootCmd.Execute()
}
