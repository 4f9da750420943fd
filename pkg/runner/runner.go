package runner

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"relay-bridger/config"
	"relay-bridger/pkg/bridge"
	"relay-bridger/pkg/chain"
	"relay-bridger/pkg/relay"
	"relay-bridger/pkg/types"
)

// Summary counts per-profile outcomes of one batch run. Skips are
// reported separately from failures.
type Summary struct {
	Done    int
	Skipped int
	Failed  int
}

// Runner executes the bridge sequentially for a batch of profiles.
// Profile N+1 does not start until profile N's run terminates, followed
// by a randomized delay. No state is shared between profiles: each gets
// its own chain client, proxy and nonce sequence.
type Runner struct {
	settings *config.Settings
	from     config.NetworkConfig
	to       config.NetworkConfig
	profiles []types.Profile
	log      *zap.SugaredLogger
	rng      *rand.Rand
}

// New builds a runner for the validated settings and loaded profiles.
func New(settings *config.Settings, from, to config.NetworkConfig, profiles []types.Profile, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{
		settings: settings,
		from:     from,
		to:       to,
		profiles: profiles,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run processes every profile in order. A core error terminates only the
// profile that raised it; the batch always continues.
func (r *Runner) Run(ctx context.Context) Summary {
	var summary Summary

	for i, p := range r.profiles {
		log := r.log.With("profile", i+1, "total", len(r.profiles))
		log.Infow("starting profile")

		outcome, err := r.runProfile(ctx, p, log)
		switch outcome {
		case types.OutcomeDone:
			summary.Done++
			log.Infow("profile finished", "outcome", outcome.String())
		case types.OutcomeSkipped:
			summary.Skipped++
			log.Infow("profile skipped")
		default:
			summary.Failed++
			log.Errorw("profile failed", "error", err)
		}

		if ctx.Err() != nil {
			return summary
		}
		if i < len(r.profiles)-1 {
			r.delay(ctx)
		}
	}
	return summary
}

// runProfile builds the per-profile collaborators and drives one
// orchestrator pass.
func (r *Runner) runProfile(ctx context.Context, p types.Profile, log *zap.SugaredLogger) (types.Outcome, error) {
	client, err := chain.NewClient(ctx, chain.Options{
		RPCURL:      r.from.RPCURL,
		ChainID:     r.from.ChainID,
		PrivateKey:  p.PrivateKey,
		Proxy:       p.Proxy,
		ExplorerURL: r.from.ExplorerURL,
	})
	if err != nil {
		return types.OutcomeFailed, err
	}
	defer client.Close()

	httpc, err := chain.NewProxyHTTPClient(p.Proxy)
	if err != nil {
		return types.OutcomeFailed, err
	}
	quotes := relay.NewClient(r.settings.RelayBaseURL, httpc)

	orchestrator := bridge.NewOrchestrator(client, quotes, bridge.NewAmountResolver(nil), bridge.Params{
		Token:               r.settings.Token,
		Method:              r.settings.BridgeMethod,
		FromChainID:         r.from.ChainID,
		ToChainID:           r.to.ChainID,
		OriginCurrency:      r.from.Currency(r.settings.Token),
		DestinationCurrency: r.to.Currency(r.settings.Token),
		FixedAmount:         r.settings.Amount,
		MinBalance:          r.settings.MinBalanceToBridge,
		TransferRange:       r.settings.TransferAmountRange,
		UseReceiver:         r.settings.UseReceiver,
	}, log)

	return orchestrator.Run(ctx)
}

// delay sleeps a random duration drawn from the configured range.
func (r *Runner) delay(ctx context.Context) {
	lo, hi := r.settings.DelayRange[0], r.settings.DelayRange[1]
	seconds := lo
	if hi > lo {
		seconds = lo + r.rng.Intn(hi-lo+1)
	}
	r.log.Infow("waiting before next profile", "seconds", seconds)

	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(seconds) * time.Second):
	}
}
