package eventio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/eflow"
)

type pfoRecord struct {
	Type             eflow.PFOType  `json:"type"`
	Px               float64        `json:"px"`
	Py               float64        `json:"py"`
	Pz               float64        `json:"pz"`
	E                float64        `json:"e"`
	Charge           int            `json:"charge,omitempty"`
	Track            *calo.TrackRef `json:"track,omitempty"`
	ClusterIDs       []int          `json:"cluster_ids,omitempty"`
	ExpectedEnergy   float64        `json:"expected_energy,omitempty"`
	ExpectedVariance float64        `json:"expected_variance,omitempty"`
	Dense            bool           `json:"dense,omitempty"`
	Pull             float64        `json:"pull,omitempty"`
	NoBin            bool           `json:"no_bin,omitempty"`
	Isolated         bool           `json:"isolated,omitempty"`
	RawEnergy        float64        `json:"raw_energy,omitempty"`
}

type resultRecord struct {
	EventID string      `json:"event_id"`
	PFOs    []pfoRecord `json:"pfos"`
}

func newPFORecord(p eflow.PFO) pfoRecord {
	p4 := p.P4
	return pfoRecord{
		Type:             p.Type,
		Px:               p4.Px(),
		Py:               p4.Py(),
		Pz:               p4.Pz(),
		E:                p4.E(),
		Charge:           p.Charge,
		Track:            p.Track,
		ClusterIDs:       p.ClusterIDs,
		ExpectedEnergy:   p.ExpectedEnergy,
		ExpectedVariance: p.ExpectedVariance,
		Dense:            p.DenseEnvironment,
		Pull:             p.Pull,
		NoBin:            p.NoBin,
		Isolated:         p.Isolated,
		RawEnergy:        p.RawEnergy,
	}
}

// Writer encodes results as JSON lines. Call Flush when done.
type Writer struct {
	buf *bufio.Writer
	enc *json.Encoder
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	return &Writer{buf: buf, enc: json.NewEncoder(buf)}
}

// Write encodes one event's PFOs.
func (w *Writer) Write(res *eflow.Result) error {
	rec := resultRecord{EventID: res.EventID, PFOs: make([]pfoRecord, 0, len(res.PFOs))}
	for _, p := range res.PFOs {
		rec.PFOs = append(rec.PFOs, newPFORecord(p))
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("event %s: %w", res.EventID, err)
	}
	return nil
}

// Flush writes any buffered output.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}
