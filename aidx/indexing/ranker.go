package indexing

import (
	"slices"

	"github.com/ZanzyTHEbar/asset-index/aidx/tokenizer"
	"github.com/ZanzyTHEbar/asset-index/aidx/trees"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RankedFile pairs a file with its surprisal score.
type RankedFile struct {
	File      *trees.File
	Surprisal uint64
}

// RankStats summarizes the surprisal distribution of a build.
type RankStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Surprisal scores a file by how rare its tokens are. Each stem and
// extension token adds total minus the number of files carrying it, and the
// parent directory adds total minus its file count once.
func Surprisal(f *trees.File, total int, stemCounts, extCounts map[tokenizer.Token]int) uint64 {
	var s uint64
	for t := range f.Stem {
		s += rarity(total, stemCounts[t])
	}
	for t := range f.Ext {
		s += rarity(total, extCounts[t])
	}
	return s + rarity(total, f.Siblings)
}

func rarity(total, count int) uint64 {
	if count >= total {
		return 0
	}
	return uint64(total - count)
}

// Rank orders every file of the forest from most shared to most unique.
// Files with equal scores keep their walk order.
func Rank(forest trees.Forest) []RankedFile {
	files := forest.Files()
	stemCounts, extCounts := forest.TokenCounts()

	ranked := make([]RankedFile, len(files))
	for i, f := range files {
		ranked[i] = RankedFile{File: f, Surprisal: Surprisal(f, len(files), stemCounts, extCounts)}
	}
	slices.SortStableFunc(ranked, func(a, b RankedFile) int {
		switch {
		case a.Surprisal < b.Surprisal:
			return -1
		case a.Surprisal > b.Surprisal:
			return 1
		}
		return 0
	})
	return ranked
}

// ComputeRankStats returns the distribution of scores in ranked.
func ComputeRankStats(ranked []RankedFile) RankStats {
	if len(ranked) == 0 {
		return RankStats{}
	}
	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		scores[i] = float64(r.Surprisal)
	}
	mean, std := stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		std = 0
	}
	return RankStats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(scores),
		Max:    floats.Max(scores),
	}
}
