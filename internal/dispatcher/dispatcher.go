// Package dispatcher implements the Dispatcher (§4.9): for each incoming
// transaction hash it spawns an independent goroutine running
// Watcher -> DEX Table -> Trade Extractor -> Copy-Trade Planner -> Submitter,
// isolating one hash's failure from its peers and logging every step with
// the originating hash for correlation (§7).
package dispatcher

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/logging"
	"github.com/copytrade/router-mirror/internal/planner"
	"github.com/copytrade/router-mirror/internal/submitter"
	"github.com/copytrade/router-mirror/internal/trade"
	"github.com/copytrade/router-mirror/internal/watcher"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// CopyPolicy supplies the per-request amounts and recipient the Planner
// needs; the Dispatcher itself holds no trading policy.
type CopyPolicy struct {
	AmountIn         *domain.U256
	AmountOutMinimum *domain.U256
	Recipient        common.Address
}

// Classifier resolves a router address to its DexKind. Satisfied by both
// *dextable.Table directly and *statecache.Classifier (its memoizing
// wrapper), so the live service can pass the memoized form while any other
// caller can pass the bare table.
type Classifier interface {
	Classify(chain domain.Chain, router common.Address) (domain.DexKind, error)
}

// Dispatcher wires the per-hash pipeline stages together.
type Dispatcher struct {
	watcher   *watcher.Watcher
	dexTable  Classifier
	extractor *trade.Extractor
	planner   *planner.Planner
	submitter *submitter.Submitter
	logger    *slog.Logger
}

// New builds a Dispatcher from its already-constructed collaborators.
func New(
	w *watcher.Watcher,
	dexTable Classifier,
	extractor *trade.Extractor,
	pl *planner.Planner,
	sub *submitter.Submitter,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		watcher:   w,
		dexTable:  dexTable,
		extractor: extractor,
		planner:   pl,
		submitter: sub,
		logger:    logger,
	}
}

// Dispatch spawns one goroutine per hash in hashes, applying policy to each
// resulting Trade. It returns immediately; results are logged as each
// goroutine completes, not collected, matching §4.9's "failure is logged but
// does not affect peers".
func (d *Dispatcher) Dispatch(ctx context.Context, chain domain.Chain, hashes []common.Hash, policy CopyPolicy) {
	for _, hash := range hashes {
		go d.run(ctx, chain, hash, policy)
	}
}

// run executes one hash's full pipeline, never panicking the caller: every
// step's error is logged with the hash attached and the goroutine returns.
func (d *Dispatcher) run(ctx context.Context, chain domain.Chain, hash common.Hash, policy CopyPolicy) {
	log := logging.ForHash(d.logger, hash.Hex())

	ready, err := d.watcher.Resolve(ctx, hash)
	if err != nil {
		logging.LogError(log, "watcher", err)
		return
	}

	if ready.Body.To == nil {
		logging.LogError(log, "dextable", xerrors.UnknownRouter(string(chain), "<contract creation>"))
		return
	}
	router := *ready.Body.To
	dexKind, err := d.dexTable.Classify(chain, router)
	if err != nil {
		logging.LogError(log, "dextable", err)
		return
	}

	tr, err := d.extractor.Extract(chain, dexKind, ready)
	if err != nil {
		logging.LogError(log, "extractor", err)
		return
	}

	plan, err := d.planner.Plan(tr, policy.AmountIn, policy.AmountOutMinimum, policy.Recipient)
	if err != nil {
		logging.LogError(log, "planner", err)
		return
	}

	confirmed, err := d.submitter.Submit(ctx, plan)
	if err != nil {
		logging.LogError(log, "submitter", err)
		return
	}

	log.Info("copy trade confirmed",
		"component", "dispatcher",
		"status", confirmed.Receipt.Status,
		"token_in", tr.TokenIn.Hex(),
		"token_out", tr.TokenOut.Hex(),
	)
}
