package eflow

// CaloObject groups tracks with the clusters they are linked to. It is the
// unit processed by subtraction and recovery and is consumed when PFOs are
// built.
type CaloObject struct {
	Tracks   []*RecTrack
	Clusters []*RecCluster
	Links    []*Link
}

func (o *CaloObject) addTrack(t *RecTrack) {
	o.Tracks = append(o.Tracks, t)
	t.object = o
}

func (o *CaloObject) addCluster(c *RecCluster) {
	o.Clusters = append(o.Clusters, c)
}

func (o *CaloObject) addLink(l *Link) {
	o.Links = append(o.Links, l)
}

// removeTrack detaches t from the object, used when recovery moves the
// track into a fresh object.
func (o *CaloObject) removeTrack(t *RecTrack) {
	for i, ot := range o.Tracks {
		if ot == t {
			o.Tracks = append(o.Tracks[:i:i], o.Tracks[i+1:]...)
			break
		}
	}
	if t.object == o {
		t.object = nil
	}
}

// release destroys the object's links once its PFOs have been built.
func (o *CaloObject) release() {
	for _, t := range o.Tracks {
		t.clearLinks()
	}
	for _, c := range o.Clusters {
		c.clearLinks()
	}
	o.Links = nil
}

// ClusterEnergy returns the current summed energy of the object's clusters.
func (o *CaloObject) ClusterEnergy() float64 {
	var e float64
	for _, c := range o.Clusters {
		e += c.Energy()
	}
	return e
}

// buildCaloObjects partitions tracks and clusters into connected
// components of the link graph. Tracks must be in descending pT order and
// clusters in their event order; objects come out ordered by their leading
// track, followed by one object per unlinked cluster.
func buildCaloObjects(tracks []*RecTrack, clusters []*RecCluster) []*CaloObject {
	var objects []*CaloObject
	seenTrack := make(map[*RecTrack]bool, len(tracks))
	seenCluster := make(map[*RecCluster]bool, len(clusters))

	for _, seed := range tracks {
		if seenTrack[seed] {
			continue
		}
		obj := &CaloObject{}
		seenTrack[seed] = true
		queue := []*RecTrack{seed}
		var members []*RecTrack
		var memberClusters []*RecCluster
		for len(queue) > 0 {
			t := queue[0]
			queue = queue[1:]
			members = append(members, t)
			for _, l := range t.links {
				obj.addLink(l)
				c := l.Cluster
				if seenCluster[c] {
					continue
				}
				seenCluster[c] = true
				memberClusters = append(memberClusters, c)
				for _, cl := range c.links {
					if !seenTrack[cl.Track] {
						seenTrack[cl.Track] = true
						queue = append(queue, cl.Track)
					}
				}
			}
		}

		sortTracks(members)
		for _, t := range members {
			obj.addTrack(t)
		}
		sortClustersByOrder(memberClusters)
		for _, c := range memberClusters {
			obj.addCluster(c)
		}
		objects = append(objects, obj)
	}

	for _, c := range clusters {
		if seenCluster[c] {
			continue
		}
		obj := &CaloObject{}
		obj.addCluster(c)
		objects = append(objects, obj)
	}
	return objects
}
