package audit

import "sort"

// LinkGraph maps each target path to the ordered list of source paths that
// reference it. Parallel edges are kept: two links from the same page count
// twice toward inbound degree.
type LinkGraph struct {
	inbound map[string][]string
	targets []string // insertion order, for deterministic iteration
}

// NewLinkGraph returns an empty graph.
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{inbound: make(map[string][]string)}
}

// AddEdge records one target<-source reference.
func (g *LinkGraph) AddEdge(target, source string) {
	if _, ok := g.inbound[target]; !ok {
		g.targets = append(g.targets, target)
	}
	g.inbound[target] = append(g.inbound[target], source)
}

// Sources returns the pages linking to target, in discovery order.
func (g *LinkGraph) Sources(target string) []string {
	return g.inbound[target]
}

// InboundCount returns the inbound degree of target.
func (g *LinkGraph) InboundCount(target string) int {
	return len(g.inbound[target])
}

// PageRank pairs a page with its inbound degree.
type PageRank struct {
	Page    string
	Inbound int
}

// Top returns the n pages with the highest inbound degree, ties broken by
// page path for stable output.
func (g *LinkGraph) Top(n int) []PageRank {
	ranks := make([]PageRank, 0, len(g.targets))
	for _, t := range g.targets {
		ranks = append(ranks, PageRank{Page: t, Inbound: len(g.inbound[t])})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Inbound != ranks[j].Inbound {
			return ranks[i].Inbound > ranks[j].Inbound
		}
		return ranks[i].Page < ranks[j].Page
	})
	if n < len(ranks) {
		ranks = ranks[:n]
	}
	return ranks
}
