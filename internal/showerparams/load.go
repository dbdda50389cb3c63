package showerparams

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/banshee-data/eflowrec/internal/calo"
)

type fileResponse struct {
	FirstLayer calo.Layer  `toml:"first_layer"`
	Mean       float64     `toml:"mean"`
	Sigma      float64     `toml:"sigma"`
	Rings      []calo.Ring `toml:"rings"`
}

type fileBin struct {
	Energy                   int            `toml:"energy"`
	Eta                      int            `toml:"eta"`
	FirstInteractionFraction float64        `toml:"first_interaction_fraction"`
	Responses                []fileResponse `toml:"response"`
}

type fileTable struct {
	EnergyPoints []float64 `toml:"energy_points"`
	EtaEdges     []float64 `toml:"eta_edges"`
	Bins         []fileBin `toml:"bin"`
}

// Load reads a shower parameter table from a TOML file. A missing or
// invalid table is an initialisation error: reconstruction cannot run
// without it.
func Load(path string) (*Table, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read shower parameter table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("shower parameter table %s: %w", cleanPath, err)
	}
	return t, nil
}

// Parse decodes a shower parameter table from TOML.
func Parse(data []byte) (*Table, error) {
	var ft fileTable
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ft); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	t, err := NewTable(ft.EnergyPoints, ft.EtaEdges)
	if err != nil {
		return nil, err
	}
	if len(ft.Bins) == 0 {
		return nil, fmt.Errorf("table defines no bins")
	}

	seen := make(map[binKey]bool, len(ft.Bins))
	for i, fb := range ft.Bins {
		key := binKey{fb.Energy, fb.Eta}
		if seen[key] {
			return nil, fmt.Errorf("bin[%d]: duplicate bin (energy=%d, eta=%d)", i, fb.Energy, fb.Eta)
		}
		seen[key] = true

		bin := Bin{
			FirstInteractionFraction: fb.FirstInteractionFraction,
			Responses:                make(map[calo.Layer]Response, len(fb.Responses)),
		}
		for _, fr := range fb.Responses {
			if _, dup := bin.Responses[fr.FirstLayer]; dup {
				return nil, fmt.Errorf("bin[%d]: duplicate response for layer %s", i, fr.FirstLayer)
			}
			bin.Responses[fr.FirstLayer] = Response{
				MeanFactor:  fr.Mean,
				SigmaFactor: fr.Sigma,
				Rings:       fr.Rings,
			}
		}
		if err := t.Set(fb.Energy, fb.Eta, bin); err != nil {
			return nil, fmt.Errorf("bin[%d]: %w", i, err)
		}
	}
	return t, nil
}
