package systems

import "github.com/pthm-cable/ecosim/organism"

// Mate scoring weights.
const (
	mateAttractivenessWeight = 0.4
	mateProximityWeight      = 0.3
	mateHealthWeight         = 0.15
	mateEnergyWeight         = 0.15
)

// MateScore rates a candidate partner seen at distance dist within radius.
func MateScore(cand *organism.Organism, dist, radius float32) float32 {
	proximity := float32(0)
	if radius > 0 {
		proximity = clamp01(1 - dist/radius)
	}
	return mateAttractivenessWeight*cand.Attractiveness +
		mateProximityWeight*proximity +
		mateHealthWeight*cand.Health/organism.MaxHealth +
		mateEnergyWeight*cand.EnergyRatio()
}

// FindMate returns the best-scoring partner for o among the hash neighbors,
// or nil if no compatible partner able to breed is within radius. Neighbor
// keys index into orgs.
func FindMate(o *organism.Organism, orgs []*organism.Organism, neighbors []Neighbor[int], radius float32) *organism.Organism {
	var best *organism.Organism
	var bestScore float32
	for _, n := range neighbors {
		cand := orgs[n.Key]
		if !o.CanMateWith(cand) || !cand.CanReproduce() {
			continue
		}
		dist := n.Dist()
		if dist > radius {
			continue
		}
		if score := MateScore(cand, dist, radius); best == nil || score > bestScore {
			best, bestScore = cand, score
		}
	}
	return best
}
