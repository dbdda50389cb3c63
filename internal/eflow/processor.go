package eflow

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/monitoring"
	"github.com/banshee-data/eflowrec/internal/showerparams"
)

// Event is the input of one reconstruction: tracks and clusters in their
// declared order. Process takes ownership of the clusters, whose cell
// energies are subtracted in place through the event's arena; an Event is
// processed once.
type Event struct {
	ID       string
	Tracks   []*calo.Track
	Clusters []*calo.Cluster
}

// Stats counts what happened to an event's tracks and clusters.
type Stats struct {
	Tracks        int
	Clusters      int
	Matched       int // primary-pass matches
	Isolated      int // tracks left without a cluster
	NoBin         int
	Deferred      int // first-pass E/p failures handed to recovery
	Subtracted    int
	Dense         int
	Recovered     int
	Annihilated   int // clusters
	Charged       int
	Neutral       int
	EnergyRemoved float64
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Tracks += o.Tracks
	s.Clusters += o.Clusters
	s.Matched += o.Matched
	s.Isolated += o.Isolated
	s.NoBin += o.NoBin
	s.Deferred += o.Deferred
	s.Subtracted += o.Subtracted
	s.Dense += o.Dense
	s.Recovered += o.Recovered
	s.Annihilated += o.Annihilated
	s.Charged += o.Charged
	s.Neutral += o.Neutral
	s.EnergyRemoved += o.EnergyRemoved
}

// Result is the reconstruction output of one event.
type Result struct {
	EventID string
	PFOs    []PFO
	Stats   Stats
}

// Processor runs the energy-flow reconstruction. It holds only read-only
// state and may process several events concurrently.
type Processor struct {
	cfg     Config
	matcher Matcher
	sim     Simulator
	engine  SubtractionEngine
}

// NewProcessor validates cfg and binds the shower parameter table.
func NewProcessor(cfg Config, table *showerparams.Table) (*Processor, error) {
	if table == nil {
		return nil, errors.New("shower parameter table is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid eflow config: %w", err)
	}
	dist, err := NewDistanceCalculator(cfg.MatchDistance, cfg.MinClusterWidth)
	if err != nil {
		return nil, err
	}
	return &Processor{
		cfg:     cfg,
		matcher: Matcher{Distance: dist, Cut: cfg.MatchCut},
		sim:     Simulator{Table: table, IntegrationCone: cfg.IntegrationCone},
		engine:  SubtractionEngine{AnnihilationSigma: cfg.AnnihilationSigma},
	}, nil
}

// Config returns the processor's configuration.
func (p *Processor) Config() Config { return p.cfg }

// eventState is the private universe of one event.
type eventState struct {
	id       string
	arena    *calo.CellArena
	tracks   []*RecTrack
	clusters []*RecCluster
	objects  []*CaloObject
	stats    Stats
}

// Process reconstructs one event. Data problems degrade individual tracks
// and never abort the event.
func (p *Processor) Process(ev *Event) *Result {
	st := p.prepare(ev)

	p.computeConeEnergies(st)
	p.matchTracks(st)
	st.objects = buildCaloObjects(st.tracks, st.clusters)
	p.simulate(st)
	p.subtractAll(st, true)
	p.recoverSplitShowers(st)

	pfos := newPFOBuilder(p.cfg.LinkChargedClusters).build(st.objects)
	p.finish(st, pfos)

	return &Result{EventID: st.id, PFOs: pfos, Stats: st.stats}
}

// ProcessAll processes independent events in parallel with at most workers
// in flight (unlimited when workers <= 0). Results keep the input order.
// Cancelling ctx stops scheduling further events.
func (p *Processor) ProcessAll(ctx context.Context, events []*Event, workers int) ([]*Result, error) {
	results := make([]*Result, len(events))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, ev := range events {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Process(ev)
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

// prepare wraps the event's tracks and clusters, attaches the clusters to a
// fresh arena and applies the descending-pT processing order.
func (p *Processor) prepare(ev *Event) *eventState {
	st := &eventState{id: ev.ID, arena: calo.NewCellArena()}
	for _, t := range ev.Tracks {
		if t == nil {
			continue
		}
		st.tracks = append(st.tracks, newRecTrack(t))
	}
	for _, c := range ev.Clusters {
		if c == nil {
			continue
		}
		c.Attach(st.arena)
		st.clusters = append(st.clusters, &RecCluster{Cluster: c})
	}
	sortTracks(st.tracks)
	sortClusters(st.clusters)
	st.stats.Tracks = len(st.tracks)
	st.stats.Clusters = len(st.clusters)
	return st
}

// computeConeEnergies records each track's dense-cone energy before any
// cell has been removed.
func (p *Processor) computeConeEnergies(st *eventState) {
	if !p.cfg.Dense.Enabled() {
		return
	}
	all := make([]*calo.Cluster, len(st.clusters))
	for i, c := range st.clusters {
		all[i] = c.Cluster
	}
	for _, t := range st.tracks {
		t.ConeEnergy = ConeEnergy(t.ReferencePosition(), all, p.cfg.Dense.Cone)
	}
}

// matchTracks links each track to at most one cluster.
func (p *Processor) matchTracks(st *eventState) {
	for _, t := range st.tracks {
		m, ok := p.matcher.BestMatch(t, st.clusters)
		if !ok {
			t.Isolated = true
			continue
		}
		newLink(t, m.Cluster, m.Distance)
		st.stats.Matched++
	}
}

// simulate predicts the shower of every track. Tracks without a table bin
// are flagged and skipped by subtraction.
func (p *Processor) simulate(st *eventState) {
	for _, t := range st.tracks {
		p.simulateTrack(st, t, p.cfg.IntegrationCone)
	}
}

func (p *Processor) simulateTrack(st *eventState, t *RecTrack, cone float64) bool {
	shower, ok := p.sim.Simulate(t.Track, t.linkedClusters(), cone)
	if !ok {
		t.NoBin = true
		t.HasBin = false
		monitoring.Warnf("[Simulator] event %s: no shower parameter bin for track %s (E=%.2f GeV, eta=%.3f)",
			st.id, t.Ref, t.E(), t.ReferencePosition().Eta)
		return false
	}
	t.setExpectation(shower)
	return true
}

// subtractAll runs subtraction over every object in order. The first pass
// defers tracks whose linked energy is too low for their momentum.
func (p *Processor) subtractAll(st *eventState, firstPass bool) {
	for _, obj := range st.objects {
		for _, t := range obj.Tracks {
			p.subtractTrack(st, t, firstPass)
		}
	}
}

// subtractTrack removes one track's expected deposit from its linked
// clusters. It is a no-op for tracks already subtracted.
func (p *Processor) subtractTrack(st *eventState, t *RecTrack, firstPass bool) {
	if t.Subtracted() || t.NoBin || !t.HasBin || len(t.links) == 0 {
		return
	}
	clusters := t.linkedClusters()

	if firstPass && clusterEnergy(clusters) < t.ExpectedEnergy-p.cfg.EOverPFailSigma*t.ExpectedSigma() {
		st.stats.Deferred++
		return
	}

	if p.cfg.Dense.Enabled() {
		t.Pull = p.cfg.Dense.Pull(t.ConeEnergy, t.ExpectedEnergy, t.ExpectedSigma())
		if p.cfg.Dense.IsDense(t.Pull, t.Pt()) {
			p.simulateWide(st, t, clusters)
			t.Dense = true
			t.markSubtracted()
			st.stats.Dense++
			return
		}
	}

	res := p.engine.Subtract(t.Track, t.shower(), clusters)
	if !t.markSubtracted() {
		return
	}
	st.stats.Subtracted++
	st.stats.EnergyRemoved += res.Removed
}

// simulateWide recomputes a dense track's expectation integrating over the
// dense cone. The narrow-cone result is kept when the wide lookup fails.
func (p *Processor) simulateWide(st *eventState, t *RecTrack, clusters []*calo.Cluster) {
	shower, ok := p.sim.Simulate(t.Track, clusters, p.cfg.Dense.Cone)
	if !ok {
		monitoring.Logf("[Dense] event %s: wide-cone simulation failed for track %s, keeping narrow-cone expectation", st.id, t.Ref)
		return
	}
	t.setExpectation(shower)
}

// finish fills the end-of-event counters.
func (p *Processor) finish(st *eventState, pfos []PFO) {
	for _, t := range st.tracks {
		if t.Isolated {
			st.stats.Isolated++
		}
		if t.NoBin {
			st.stats.NoBin++
		}
	}
	for _, c := range st.clusters {
		if c.Annihilated() {
			st.stats.Annihilated++
		}
	}
	for _, pfo := range pfos {
		if pfo.Type == Charged {
			st.stats.Charged++
		} else {
			st.stats.Neutral++
		}
	}
}
