package seeder

const (
	RankMin int64 = 0
	RankMax int64 = 1000

	rankNullProbability = 0.1
)

// RankAllocator hands out player ranks that stay unique among non-null values.
type RankAllocator struct {
	s    *Sampler
	used map[int64]bool
}

func NewRankAllocator(s *Sampler, used []int64) *RankAllocator {
	r := &RankAllocator{s: s, used: make(map[int64]bool, len(used))}
	for _, v := range used {
		r.used[v] = true
	}
	return r
}

// Next draws a candidate rank and returns nil when it is already taken or,
// independently, with probability 0.1.
func (r *RankAllocator) Next() *int64 {
	candidate := r.s.Int64Range(RankMin, RankMax)
	if r.used[candidate] || r.s.Float64() < rankNullProbability {
		return nil
	}
	r.used[candidate] = true
	return &candidate
}

// Unique returns n fresh non-null ranks.
func (r *RankAllocator) Unique(n int) ([]int64, error) {
	ranks, err := UniqueInts(r.s.Rand(), n, RankMin, RankMax, r.used)
	if err != nil {
		return nil, err
	}
	for _, v := range ranks {
		r.used[v] = true
	}
	return ranks, nil
}

// Used reports how many ranks are taken.
func (r *RankAllocator) Used() int {
	return len(r.used)
}
