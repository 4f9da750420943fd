package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relay-bridger/config"
	"relay-bridger/pkg/chain"
	"relay-bridger/pkg/profile"
	"relay-bridger/pkg/types"
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show source-network balances for every profile",
	Long: `Read-only check of every profile's native (and USDC) balance on the
configured source network. No transactions are built or sent.`,
	Run: runBalances,
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}

type balanceRow struct {
	address string
	native  string
	usdc    string
	err     error
}

func runBalances(cmd *cobra.Command, args []string) {
	settings, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	from, _ := config.Network(settings.FromNetwork)

	profiles, err := profile.Load(settings.PrivateKeysFile, settings.ProxiesFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	fmt.Printf("\nBalances on %s (%d profiles)\n\n", color.YellowString(from.Name), len(profiles))

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Querying balances..."
	s.Start()

	ctx := context.Background()
	rows := make([]balanceRow, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, profileBalance(ctx, from, p, settings.Token))
	}
	s.Stop()

	for i, r := range rows {
		if r.err != nil {
			fmt.Printf("  %2d  %s\n", i+1, color.RedString("error: %v", r.err))
			continue
		}
		line := fmt.Sprintf("  %2d  %s  %s ETH", i+1, color.CyanString(r.address), r.native)
		if r.usdc != "" {
			line += fmt.Sprintf("  %s USDC", r.usdc)
		}
		fmt.Println(line)
	}
	fmt.Println()
}

func profileBalance(ctx context.Context, network config.NetworkConfig, p types.Profile, token types.Token) balanceRow {
	var r balanceRow

	client, err := chain.NewClient(ctx, chain.Options{
		RPCURL:      network.RPCURL,
		ChainID:     network.ChainID,
		PrivateKey:  p.PrivateKey,
		Proxy:       p.Proxy,
		ExplorerURL: network.ExplorerURL,
	})
	if err != nil {
		r.err = err
		return r
	}
	defer client.Close()

	r.address = client.Address().Hex()

	nativeBalance, err := client.NativeBalance(ctx)
	if err != nil {
		r.err = err
		return r
	}
	native, err := client.FromWeiMain(ctx, nativeBalance, common.Address{})
	if err != nil {
		r.err = err
		return r
	}
	r.native = native.StringFixed(6)

	if token.IsERC20() && network.USDCAddress != (common.Address{}) {
		tokenBalance, err := client.ERC20Balance(ctx, network.USDCAddress)
		if err != nil {
			r.err = err
			return r
		}
		usdc, err := client.FromWeiMain(ctx, tokenBalance, network.USDCAddress)
		if err != nil {
			r.err = err
			return r
		}
		r.usdc = usdc.StringFixed(2)
	}
	return r
}
