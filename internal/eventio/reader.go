package eventio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/eflow"
)

type extrapolations map[string]calo.EtaPhi

type trackRecord struct {
	Px             float64        `json:"px"`
	Py             float64        `json:"py"`
	Pz             float64        `json:"pz"`
	Charge         int            `json:"charge"`
	Extrapolations extrapolations `json:"extrapolations,omitempty"`
}

type legacyTrackRecord struct {
	Pt             float64        `json:"pt"`
	Eta            float64        `json:"eta"`
	Phi            float64        `json:"phi"`
	Charge         int            `json:"charge"`
	Extrapolations extrapolations `json:"extrapolations,omitempty"`
}

type clusterRecord struct {
	ID    int         `json:"id"`
	Cells []calo.Cell `json:"cells"`
}

type eventRecord struct {
	ID           string              `json:"id"`
	Tracks       []trackRecord       `json:"tracks"`
	LegacyTracks []legacyTrackRecord `json:"legacy_tracks"`
	Clusters     []clusterRecord     `json:"clusters"`
}

// Reader decodes events from a JSON-lines stream.
type Reader struct {
	dec   *json.Decoder
	count int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return &Reader{dec: dec}
}

// Next returns the next event, or io.EOF when the stream is exhausted.
// Events without an id are numbered from zero in stream order.
func (r *Reader) Next() (*eflow.Event, error) {
	var rec eventRecord
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("event %d: %w", r.count, err)
	}
	n := r.count
	r.count++
	if rec.ID == "" {
		rec.ID = strconv.Itoa(n)
	}
	ev, err := rec.event()
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", rec.ID, err)
	}
	return ev, nil
}

// ReadAll decodes every event in r.
func ReadAll(r io.Reader) ([]*eflow.Event, error) {
	rd := NewReader(r)
	var events []*eflow.Event
	for {
		ev, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// ReadFile decodes every event in the file at path.
func ReadFile(path string) ([]*eflow.Event, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()
	return ReadAll(f)
}

func (rec *eventRecord) event() (*eflow.Event, error) {
	ev := &eflow.Event{ID: rec.ID}
	for i, tr := range rec.Tracks {
		t := calo.NewTrack(i, tr.Px, tr.Py, tr.Pz, tr.Charge)
		if err := tr.Extrapolations.apply(t); err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		ev.Tracks = append(ev.Tracks, t)
	}
	for i, tr := range rec.LegacyTracks {
		if tr.Pt <= 0 {
			return nil, fmt.Errorf("legacy track %d: pt must be positive, got %f", i, tr.Pt)
		}
		t := calo.NewLegacyTrack(i, tr.Pt, tr.Eta, tr.Phi, tr.Charge)
		if err := tr.Extrapolations.apply(t); err != nil {
			return nil, fmt.Errorf("legacy track %d: %w", i, err)
		}
		ev.Tracks = append(ev.Tracks, t)
	}
	for _, cr := range rec.Clusters {
		for _, cell := range cr.Cells {
			if !cell.Layer.Valid() {
				return nil, fmt.Errorf("cluster %d: cell %d has no sampling layer", cr.ID, cell.ID)
			}
		}
		ev.Clusters = append(ev.Clusters, calo.NewCluster(cr.ID, cr.Cells))
	}
	return ev, nil
}

func (x extrapolations) apply(t *calo.Track) error {
	for name, pos := range x {
		layer, err := calo.ParseLayer(name)
		if err != nil {
			return err
		}
		if !layer.Valid() {
			return fmt.Errorf("extrapolation layer %q is not a sampling layer", name)
		}
		t.SetExtrapolation(layer, pos)
	}
	return nil
}
