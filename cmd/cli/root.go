package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the `crp` command tree.
// Each call returns fresh commands so flag values never leak between runs.
// NewRootCmd 构建 `crp` 命令树，每次调用都返回新的命令实例。
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crp",
		Short: "A CLI tool for the Credit Risk Predictor.",
		Long: `crp sends applicant figures to the credit risk model service and prints
the risk assessment the way the predictor page shows it.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to config.yaml (default: /etc/crp/ or the working directory)")

	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newClassifyCmd())
	return rootCmd
}

// Execute is the main entry point for the CLI application.
// It parses the command-line arguments and executes the appropriate command.
// If an error occurs, it prints the error and exits with status 1.
// Execute 是 CLI 应用程序的主入口点。
// 如果发生错误，它会打印错误并以状态 1 退出。
func Execute() {
	rootCmd := NewRootCmd()
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
