// adspilot supervises ad campaign budgets against a shared state store:
// it polls metrics, snapshots them, and applies rule-based budget actions.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "adspilot",
	Short:         "Rule-based ad campaign budget monitor",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "path to config file")

	rootCmd.AddCommand(runCmd, onceCmd, verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}
