package eflow

import "sort"

// sortTracks orders tracks by descending pT. Equal pT falls back to the
// track reference so the declared input order never matters.
func sortTracks(tracks []*RecTrack) {
	sort.Slice(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if pa, pb := a.Pt(), b.Pt(); pa != pb {
			return pa > pb
		}
		if a.Ref.Kind != b.Ref.Kind {
			return a.Ref.Kind < b.Ref.Kind
		}
		return a.Ref.Index < b.Ref.Index
	})
}

// sortClusters orders clusters by descending pT, then ID, before
// subtraction.
func sortClusters(clusters []*RecCluster) {
	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if pa, pb := a.Pt(), b.Pt(); pa != pb {
			return pa > pb
		}
		return a.ID < b.ID
	})
	for i, c := range clusters {
		c.order = i
	}
}

func sortClustersByOrder(clusters []*RecCluster) {
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].order < clusters[j].order
	})
}
