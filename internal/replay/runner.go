package replay

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/planner"
	"github.com/copytrade/router-mirror/internal/statecache"
	"github.com/copytrade/router-mirror/internal/trade"
)

// Outcome is one record's replay result: either a Plan, or the error the
// pipeline produced trying to reach one.
type Outcome struct {
	Hash     common.Hash
	Target   common.Address
	Calldata []byte
	Err      error
}

// Runner replays Records through the Extractor and Planner with a fixed
// test amount_in/amount_out_minimum/recipient, matching the live
// Dispatcher's stages minus the Watcher (records are already confirmed) and
// the Submitter (replay never broadcasts).
type Runner struct {
	classifier *statecache.Classifier
	extractor  *trade.Extractor
	planner    *planner.Planner

	amountIn         *domain.U256
	amountOutMinimum *domain.U256
	recipient        common.Address
}

// NewRunner builds a Runner with the fixed test amounts/recipient applied
// to every replayed record.
func NewRunner(
	classifier *statecache.Classifier,
	extractor *trade.Extractor,
	pl *planner.Planner,
	amountIn, amountOutMinimum *domain.U256,
	recipient common.Address,
) *Runner {
	return &Runner{
		classifier:       classifier,
		extractor:        extractor,
		planner:          pl,
		amountIn:         amountIn,
		amountOutMinimum: amountOutMinimum,
		recipient:        recipient,
	}
}

// Run replays every record in order, returning one Outcome per record.
func (r *Runner) Run(records []Record) []Outcome {
	out := make([]Outcome, 0, len(records))
	for _, rec := range records {
		out = append(out, r.runOne(rec))
	}
	return out
}

func (r *Runner) runOne(rec Record) Outcome {
	if rec.Ready.Body.To == nil {
		return Outcome{Hash: rec.Hash, Err: errNoTarget{}}
	}
	router := *rec.Ready.Body.To

	dexKind, err := r.classifier.Classify(rec.Chain, router)
	if err != nil {
		return Outcome{Hash: rec.Hash, Err: err}
	}

	tr, err := r.extractor.Extract(rec.Chain, dexKind, &rec.Ready)
	if err != nil {
		return Outcome{Hash: rec.Hash, Err: err}
	}

	plan, err := r.planner.Plan(tr, r.amountIn, r.amountOutMinimum, r.recipient)
	if err != nil {
		return Outcome{Hash: rec.Hash, Err: err}
	}

	return Outcome{Hash: rec.Hash, Target: plan.Target, Calldata: plan.Calldata}
}

type errNoTarget struct{}

func (errNoTarget) Error() string { return "replay: record has no target (contract creation tx)" }
