// Package calo owns the calorimeter-side data model consumed by the
// energy-flow reconstruction.
//
// Responsibilities: sampling layers and (eta, phi) geometry, ring bands
// used for ordered cell removal, the per-event cell arena, copy-on-write
// clusters and the input track representation.
// Key types: Layer, Ring, Cell, CellArena, Cluster, Track.
//
// Dependency rule: calo never depends on eflow or showerparams.
package calo
