// Package showerparams holds the read-only table of expected calorimeter
// response to charged pions, binned in track energy and |eta|.
//
// Each bin carries the fraction of track energy used to locate the first
// interaction layer and, per first-interaction layer, the mean and sigma
// factors of the deposited energy together with the ring removal order.
// A Table is immutable once built and may be shared by any number of
// concurrently processed events.
package showerparams
