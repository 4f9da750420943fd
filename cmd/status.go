package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relay-bridger/config"
	"relay-bridger/pkg/relay"
	"relay-bridger/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <request-id>",
	Short: "Check the completion status of a bridge intent",
	Long: `Check the off-chain execution status of a submitted bridge by its
aggregator request ID.

Examples:
  relay-bridger status 0x1234...abcd
  relay-bridger status 0x1234...abcd --watch
  relay-bridger status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	requestID := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	settings, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := relay.NewClient(settings.RelayBaseURL, nil)

	if watchStatus {
		watchBridgeStatus(apiClient, requestID, jsonOutput)
	} else {
		checkBridgeStatus(apiClient, requestID, jsonOutput)
	}
}

func checkBridgeStatus(apiClient *relay.Client, requestID string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking bridge status..."
		s.Start()
	}

	status := apiClient.GetStatus(context.Background(), requestID)
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		if len(status.Raw) > 0 {
			fmt.Println(string(status.Raw))
		} else {
			fmt.Printf(`{"requestId": %q, "status": %q}`+"\n", requestID, status.State)
		}
		return
	}
	displayStatus(status)
}

func watchBridgeStatus(apiClient *relay.Client, requestID string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching bridge status (Request ID: %s)\n", color.CyanString(requestID))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	status := apiClient.GetStatus(context.Background(), requestID)
	displayStatus(status)

	for range ticker.C {
		status = apiClient.GetStatus(context.Background(), requestID)
		displayStatus(status)
		if status.State.Terminal() {
			return
		}
	}
}

func displayStatus(status types.BridgeStatus) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                       BRIDGE STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Request ID:  %s\n", color.CyanString(status.RequestID))
	fmt.Printf("  Status:      %s\n", coloredState(status.State))
	fmt.Printf("  Checked At:  %s\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredState(state types.BridgeState) string {
	label := strings.ToUpper(state.String())

	switch state {
	case types.StateSuccess:
		return color.GreenString(label)
	case types.StatePending:
		return color.YellowString(label)
	case types.StateFailed:
		return color.RedString(label)
	default:
		return label
	}
}
