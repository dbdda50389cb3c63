package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/eflowrec/internal/eflow"
)

// Histogram binning.
const (
	pullBins           = 60
	pullMin, pullMax   = -10.0, 50.0
	ratioBins          = 50
	ratioMin, ratioMax = 0.0, 1.25
	plotBins           = 40
	plotWidth          = 6 * vg.Inch
	plotHeight         = 4 * vg.Inch
)

// series is one monitored quantity: a binned histogram plus the raw values
// for summary statistics and plotting.
type series struct {
	name   string
	title  string
	xLabel string
	hist   *hbook.H1D
	values []float64
}

func newSeries(name, title, xLabel string, bins int, lo, hi float64) *series {
	return &series{name: name, title: title, xLabel: xLabel, hist: hbook.NewH1D(bins, lo, hi)}
}

func (s *series) fill(v float64) {
	s.hist.Fill(v, 1)
	s.values = append(s.values, v)
}

// Collector accumulates results from many events. It is safe for
// concurrent use.
type Collector struct {
	mu     sync.Mutex
	events int
	totals eflow.Stats

	pull            *series
	eOverP          *series
	neutralFraction *series
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		pull:            newSeries("pull", "Track pull", "(cone E - expected) / sigma", pullBins, pullMin, pullMax),
		eOverP:          newSeries("e_over_p", "Expected E/p", "expected energy / track energy", ratioBins, ratioMin, ratioMax),
		neutralFraction: newSeries("neutral_fraction", "Neutral residual fraction", "residual / raw cluster energy", ratioBins, ratioMin, ratioMax),
	}
}

// Add records one event's result.
func (c *Collector) Add(res *eflow.Result) {
	if res == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events++
	c.totals.Add(res.Stats)
	for i := range res.PFOs {
		p := &res.PFOs[i]
		switch p.Type {
		case eflow.Charged:
			if p.NoBin || p.ExpectedEnergy <= 0 {
				continue
			}
			c.pull.fill(p.Pull)
			if e := p.E(); e > 0 {
				c.eOverP.fill(p.ExpectedEnergy / e)
			}
		case eflow.Neutral:
			if p.RawEnergy > 0 {
				c.neutralFraction.fill(p.E() / p.RawEnergy)
			}
		}
	}
}

// Moments summarises one monitored quantity.
type Moments struct {
	Entries int64
	Mean    float64
	StdDev  float64
}

// Summary is the run-level digest printed by the CLI.
type Summary struct {
	RunID           string
	Events          int
	Totals          eflow.Stats
	Pull            Moments
	EOverP          Moments
	NeutralFraction Moments
}

// Summary returns the digest of everything added so far.
func (c *Collector) Summary(runID string) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Summary{
		RunID:           runID,
		Events:          c.events,
		Totals:          c.totals,
		Pull:            moments(c.pull),
		EOverP:          moments(c.eOverP),
		NeutralFraction: moments(c.neutralFraction),
	}
}

func moments(s *series) Moments {
	m := Moments{Entries: s.hist.Entries()}
	switch len(s.values) {
	case 0:
	case 1:
		m.Mean = s.values[0]
	default:
		m.Mean, m.StdDev = stat.MeanStdDev(s.values, nil)
	}
	return m
}

// SavePlots writes one PNG histogram per non-empty series into dir and
// returns the number of plots written.
func (c *Collector) SavePlots(dir string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create plot dir: %w", err)
	}

	count := 0
	for _, s := range []*series{c.pull, c.eOverP, c.neutralFraction} {
		if len(s.values) == 0 {
			continue
		}
		p := plot.New()
		p.Title.Text = s.title
		p.X.Label.Text = s.xLabel
		p.Y.Label.Text = "Entries"

		h, err := plotter.NewHist(plotter.Values(s.values), plotBins)
		if err != nil {
			return count, fmt.Errorf("%s: %w", s.name, err)
		}
		p.Add(h)

		path := filepath.Join(dir, s.name+".png")
		if err := p.Save(plotWidth, plotHeight, path); err != nil {
			return count, fmt.Errorf("failed to save %s: %w", path, err)
		}
		count++
	}
	return count, nil
}
