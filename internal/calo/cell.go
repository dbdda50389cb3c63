package calo

// CellID uniquely identifies a calorimeter cell within an event.
type CellID uint64

// Cell is a single calorimeter cell record.
type Cell struct {
	ID     CellID  `json:"id"`
	Layer  Layer   `json:"layer"`
	Eta    float64 `json:"eta"`
	Phi    float64 `json:"phi"`
	Energy float64 `json:"e"`
}

// Position returns the cell centre in (eta, phi).
func (c Cell) Position() EtaPhi { return EtaPhi{Eta: c.Eta, Phi: c.Phi} }

// CellArena is the event-scoped store of privately owned cell records,
// indexed by cell ID. A cell enters the arena the first time any cluster
// containing it is written to; from then on every cluster reads that cell's
// energy from the arena, so a cell shared by two clusters is never
// subtracted twice.
//
// A CellArena is not safe for concurrent use. Each event owns its own.
type CellArena struct {
	cells []Cell
	byID  map[CellID]int
}

// NewCellArena creates an empty arena.
func NewCellArena() *CellArena {
	return &CellArena{byID: make(map[CellID]int)}
}

// Len returns the number of cells promoted into the arena.
func (a *CellArena) Len() int { return len(a.cells) }

// intern returns the arena index for c, copying it in if absent.
func (a *CellArena) intern(c Cell) int {
	if idx, ok := a.byID[c.ID]; ok {
		return idx
	}
	a.cells = append(a.cells, c)
	idx := len(a.cells) - 1
	a.byID[c.ID] = idx
	return idx
}

// lookup returns the arena index of id, if present.
func (a *CellArena) lookup(id CellID) (int, bool) {
	idx, ok := a.byID[id]
	return idx, ok
}

// Energy returns the current energy of the promoted cell id.
func (a *CellArena) Energy(id CellID) (float64, bool) {
	idx, ok := a.byID[id]
	if !ok {
		return 0, false
	}
	return a.cells[idx].Energy, true
}
