package upload

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultScanConcurrency = 4

// Outcome is the terminal state of one candidate after validation and
// scanning. Scan is nil when validation already rejected the file.
type Outcome struct {
	CandidateID uuid.UUID
	State       State
	Verdict     Verdict
	Scan        *ScanResult
}

// Errors returns every reason the candidate was rejected.
func (o Outcome) Errors() []string {
	if !o.Verdict.IsValid {
		return o.Verdict.Errors
	}
	if o.Scan != nil && !o.Scan.Safe {
		return []string{o.Scan.Reason}
	}
	return nil
}

// Pipeline runs Validate then Scan for each candidate of a batch
// concurrently. Candidates share nothing, so results are keyed by ID.
type Pipeline struct {
	validator   *Validator
	scanner     *Scanner
	pending     *PendingSet
	concurrency int
}

func NewPipeline(rules Rules, pending *PendingSet) *Pipeline {
	if pending == nil {
		pending = NewPendingSet()
	}
	return &Pipeline{
		validator:   NewValidator(rules),
		scanner:     NewScanner(rules),
		pending:     pending,
		concurrency: defaultScanConcurrency,
	}
}

func (p *Pipeline) Validator() *Validator {
	return p.validator
}

func (p *Pipeline) Pending() *PendingSet {
	return p.pending
}

// Process returns one Outcome per candidate that was not withdrawn. keyOf maps
// a candidate to its PendingSet key; nil uses the candidate ID.
func (p *Pipeline) Process(ctx context.Context, candidates []*Candidate, keyOf func(*Candidate) string) (map[uuid.UUID]Outcome, error) {
	if err := p.validator.ValidateBatch(candidates); err != nil {
		return nil, err
	}
	if keyOf == nil {
		keyOf = func(c *Candidate) string { return c.ID.String() }
	}

	var mu sync.Mutex
	results := make(map[uuid.UUID]Outcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, c := range candidates {
		g.Go(func() error {
			outcome, ok := p.processOne(gctx, c, keyOf(c))
			if !ok {
				return nil
			}
			mu.Lock()
			results[c.ID] = outcome
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// processOne reports ok=false when the candidate was withdrawn mid-flight.
func (p *Pipeline) processOne(ctx context.Context, c *Candidate, key string) (Outcome, bool) {
	scanCtx, tracked := p.pending.Track(ctx, key)
	if !tracked {
		// Same key submitted twice in flight; treat the duplicate as invalid.
		return Outcome{
			CandidateID: c.ID,
			State:       StateRejected,
			Verdict:     Verdict{Errors: []string{"file is already being processed"}},
		}, true
	}

	verdict := p.validator.Validate(c)
	if !verdict.IsValid {
		if !p.pending.Complete(key) {
			return Outcome{}, false
		}
		return Outcome{CandidateID: c.ID, State: StateRejected, Verdict: verdict}, true
	}

	scan, err := p.scanner.Scan(scanCtx, c)
	if !p.pending.Complete(key) || err != nil {
		return Outcome{}, false
	}

	state := StateAccepted
	if !scan.Safe {
		state = StateRejected
	}
	return Outcome{CandidateID: c.ID, State: state, Verdict: verdict, Scan: &scan}, true
}
