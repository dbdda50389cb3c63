package calo

import (
	"fmt"
	"strings"
)

// Layer identifies a calorimeter sampling layer.
type Layer uint8

const (
	EMB1 Layer = iota
	EMB2
	EMB3
	EME1
	EME2
	EME3
	HEC1
	HEC2
	HEC3
	HEC4
	Tile1
	Tile2
	Tile3
	LayerUnknown
)

// NumLayers is the number of real sampling layers (LayerUnknown excluded).
const NumLayers = int(LayerUnknown)

var layerNames = [...]string{
	EMB1:         "EMB1",
	EMB2:         "EMB2",
	EMB3:         "EMB3",
	EME1:         "EME1",
	EME2:         "EME2",
	EME3:         "EME3",
	HEC1:         "HEC1",
	HEC2:         "HEC2",
	HEC3:         "HEC3",
	HEC4:         "HEC4",
	Tile1:        "Tile1",
	Tile2:        "Tile2",
	Tile3:        "Tile3",
	LayerUnknown: "Unknown",
}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("Layer(%d)", uint8(l))
}

// Valid reports whether l is a real sampling layer.
func (l Layer) Valid() bool { return l < LayerUnknown }

// ParseLayer converts a layer name (case-insensitive) into a Layer.
func ParseLayer(s string) (Layer, error) {
	for i, name := range layerNames {
		if strings.EqualFold(name, s) {
			return Layer(i), nil
		}
	}
	return LayerUnknown, fmt.Errorf("unknown calorimeter layer %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layer) UnmarshalText(b []byte) error {
	parsed, err := ParseLayer(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
