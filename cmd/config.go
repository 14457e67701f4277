package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gridpatch/gridpatch/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a saved setting",
	Long: `Change a saved setting.

Settings:
  keep-backup   true/false. Keep the .bak file after a successful save.
                Overridden by GRIDPATCH_KEEP_BACKUP and --keep-backup.

Example:
  gridpatch config set keep-backup true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configShowCmd.SilenceUsage = true
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if jsonOutput {
		return jsonPrint(cfg)
	}
	fmt.Printf("keep-backup: %v\n", cfg.KeepBackup)
	if p, err := config.Path(); err == nil {
		fmt.Fprintf(os.Stderr, "[%s]\n", p)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	key, value := args[0], args[1]
	if key != "keep-backup" {
		return fmt.Errorf("unknown setting %q (settings: keep-backup)", key)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value %q for keep-backup: want true or false", value)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.KeepBackup = b
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ keep-backup set to %v\n", b)
	return nil
}
