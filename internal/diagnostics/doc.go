// Package diagnostics accumulates per-run reconstruction monitoring:
// histograms of the track pull, the expected E/p response and the neutral
// residual fraction, run totals, and PNG plots of the distributions.
package diagnostics
