package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relay-bridger/config"
	"relay-bridger/pkg/profile"
	"relay-bridger/pkg/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bridge tokens for every configured profile",
	Long: `Run the bridge sequentially for every profile: quote a route, sign and
submit the transaction, wait for on-chain confirmation and poll the
aggregator for completion status. Profiles are processed one at a time
with a randomized delay between them.

Configuration comes from .relay-bridger.yaml (or RELAY_BRIDGER_* env
variables); private keys and proxies are read from two parallel files.`,
	Run: runBridge,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBridge(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	settings, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	from, _ := config.Network(settings.FromNetwork)
	to, _ := config.Network(settings.ToNetwork)

	profiles, err := profile.Load(settings.PrivateKeysFile, settings.ProxiesFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if len(profiles) == 0 {
		printError(fmt.Errorf("no profiles loaded from %s", settings.PrivateKeysFile))
		os.Exit(1)
	}

	log, err := newLogger(verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer log.Sync()

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    RELAY BRIDGER")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Route:     %s -> %s\n", color.YellowString(from.Name), color.YellowString(to.Name))
	fmt.Printf("  Token:     %s\n", settings.Token)
	fmt.Printf("  Method:    %s\n", settings.BridgeMethod)
	fmt.Printf("  Profiles:  %d\n", len(profiles))
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary := runner.New(settings, from, to, profiles, log).Run(ctx)

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                       SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Done:     %s\n", color.GreenString("%d", summary.Done))
	fmt.Printf("  Skipped:  %s\n", color.YellowString("%d", summary.Skipped))
	fmt.Printf("  Failed:   %s\n", color.RedString("%d", summary.Failed))
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")

	if summary.Failed > 0 && summary.Done == 0 && summary.Skipped == 0 {
		os.Exit(1)
	}
}
