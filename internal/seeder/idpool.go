package seeder

import (
	"fmt"
	"math/rand/v2"
)

// Identifier ranges of the synthetic pools.
const (
	SteamIDMin  int64 = 1_000_000_000_000
	SteamIDMax  int64 = 9_999_999_999_999
	PlayerIDMin int64 = 1_000_000_000
	PlayerIDMax int64 = 999_999_999_999
	MatchIDMin  int64 = 1_000_000
	MatchIDMax  int64 = 9_999_999
)

// UniqueInts returns exactly n distinct values in [lo, hi] that are not in
// exclude, in the order they were drawn.
func UniqueInts(rng *rand.Rand, n int, lo, hi int64, exclude map[int64]bool) ([]int64, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative count: %d", n)
	}

	excluded := 0
	for v := range exclude {
		if v >= lo && v <= hi {
			excluded++
		}
	}
	if hi < lo || hi-lo+1 < int64(n)+int64(excluded) {
		return nil, &ExhaustedRangeError{Lo: lo, Hi: hi, Requested: n, Excluded: excluded}
	}
	if n == 0 {
		return []int64{}, nil
	}

	span := hi - lo + 1
	if span <= 4*int64(n+excluded) {
		return shuffleRange(rng, n, lo, hi, exclude), nil
	}

	out := make([]int64, 0, n)
	seen := make(map[int64]bool, n)
	for len(out) < n {
		v := lo + rng.Int64N(span)
		if exclude[v] || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

// shuffleRange handles dense ranges with a partial Fisher-Yates over every
// free candidate.
func shuffleRange(rng *rand.Rand, n int, lo, hi int64, exclude map[int64]bool) []int64 {
	free := make([]int64, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		if !exclude[v] {
			free = append(free, v)
		}
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(free)-i)
		free[i], free[j] = free[j], free[i]
	}
	return free[:n:n]
}
