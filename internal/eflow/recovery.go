package eflow

import "github.com/banshee-data/eflowrec/internal/monitoring"

// recoverSplitShowers is the second pass for showers that upstream
// clustering split into pieces. Every track still unsubtracted collects all
// clusters inside the energy-dependent recovery cone into a fresh
// CaloObject and is subtracted from them together.
func (p *Processor) recoverSplitShowers(st *eventState) {
	// Step 1: clusters to consider, with links from the first pass dropped.
	// Links are dropped even when no track is recovered below, releasing
	// clusters held only by unsubtracted tracks as neutral.
	var clusters []*RecCluster
	for _, c := range st.clusters {
		if c.Empty() {
			continue
		}
		c.clearLinks()
		clusters = append(clusters, c)
	}

	// Step 2: tracks to recover, in descending pT.
	var tracks []*RecTrack
	for _, t := range st.tracks {
		if t.Subtracted() || t.NoBin {
			continue
		}
		if t.Isolated && !p.cfg.RecoverIsolatedTracks {
			continue
		}
		tracks = append(tracks, t)
	}
	if len(tracks) == 0 {
		return
	}

	recovered := 0
	for _, t := range tracks {
		// Step 3: everything inside the recovery cone.
		t.clearLinks()
		matches := p.cfg.RecoveryCone.AllMatches(t, clusters)
		if len(matches) == 0 {
			t.Isolated = true
			continue
		}

		// Step 4: regroup the track and its matches into a new object.
		if t.object != nil {
			t.object.removeTrack(t)
		}
		obj := &CaloObject{}
		obj.addTrack(t)
		for _, m := range matches {
			obj.addCluster(m.Cluster)
			obj.addLink(newLink(t, m.Cluster, m.Distance))
		}
		st.objects = append(st.objects, obj)
		t.Isolated = false

		// Step 5: simulate on the aggregate and subtract. A track left
		// without a shower gives its clusters back so they become neutral.
		if !p.simulateTrack(st, t, p.cfg.IntegrationCone) {
			t.unlink()
			obj.Clusters, obj.Links = nil, nil
			continue
		}
		p.subtractTrack(st, t, false)
		if t.Subtracted() {
			recovered++
		}
	}

	st.stats.Recovered += recovered
	if recovered > 0 {
		monitoring.Logf("[Recovery] event %s: recovered %d of %d tracks", st.id, recovered, len(tracks))
	}
}
