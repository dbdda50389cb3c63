// Package eventio reads reconstruction input events and writes PFO output
// as JSON lines. It is the file adapter used by the eflowrec command; the
// reconstruction itself never touches files.
//
// Input, one event per line:
//
//	{"id": "evt-1",
//	 "tracks": [{"px": 1, "py": 0, "pz": 0, "charge": 1,
//	             "extrapolations": {"EMB2": {"eta": 0.01, "phi": 0.02}}}],
//	 "legacy_tracks": [{"pt": 5, "eta": 0.3, "phi": 1.2, "charge": -1}],
//	 "clusters": [{"id": 0, "cells": [{"id": 17, "layer": "EMB2", "eta": 0.01, "phi": 0.02, "e": 0.8}]}]}
//
// Output, one event per line: {"event_id": ..., "pfos": [...]}.
package eventio
