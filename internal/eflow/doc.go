// Package eflow reconstructs particle-flow objects from tracks and
// calorimeter clusters.
//
// Responsibilities: track-cluster matching, CaloObject aggregation,
// shower simulation from the binned parameter table, ordered cell
// subtraction with annihilation, the dense-environment policy, split
// shower recovery and the final PFO building.
// Key types: Processor, Event, RecTrack, RecCluster, Link, CaloObject, PFO.
//
// Each event is processed synchronously by one goroutine: subtraction
// mutates the event's clusters, so tracks are handled strictly in
// descending transverse momentum. Independent events may be processed in
// parallel (see Processor.ProcessAll); they share only read-only
// configuration and the shower parameter table.
package eflow
