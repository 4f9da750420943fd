package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "relay-bridger",
	Short: "Batch cross-chain bridging for wallet profiles via the Relay aggregator",
	Long: `relay-bridger automates cross-chain token transfers for a batch of wallet
profiles. For each profile it quotes a route through the Relay aggregation
API, signs and submits the chain transaction through the profile's proxy,
waits for on-chain confirmation and polls the aggregator for completion.

Examples:
  relay-bridger run
  relay-bridger status <request-id>
  relay-bridger status <request-id> --watch --interval 10
  relay-bridger balances`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// newLogger builds the console logger handed to the engine.
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
