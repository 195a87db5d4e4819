package pipeline

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/cleaning"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

// Stage names, used for spans, metrics and PairError.Stage.
const (
	StageConfig      = "config"
	StageMerge       = "merge"
	StagePOS         = "pos-filter"
	StageContraction = "contraction"
	StageCaseMerge   = "case-merge"
	StageCleaning    = "cleaning"
	StageFinal       = "final"
	StageShare       = "share"
	StageWrite       = "write"
)

// Pair identifies one independent unit of work.
type Pair struct {
	Lang string `json:"lang"`
	N    int    `json:"n"`
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%d", p.Lang, p.N)
}

// Accounting is the running bookkeeping of one pair's run. It is owned by a
// single Run call and never shared.
type Accounting struct {
	// FreqAdded is the mass introduced by flattening contraction splits.
	FreqAdded int64
	// FreqRemoved is the mass dropped by the cleaning passes.
	FreqRemoved int64
	// TruncationBound is the highest per-file minimum frequency.
	TruncationBound int64
}

// Outcome is everything a finished pair produced.
type Outcome struct {
	Pair       Pair
	Code       string
	Table      ngram.Table
	Cumshare   []float64
	Removed    ngram.Table
	Spill      map[int]ngram.Table
	Accounting Accounting
	// Cutoff is the frequency of the last emitted row.
	Cutoff      int64
	CorpusTotal int64
	Passes      []cleaning.PassStat
	OutputPath  string
	TraceID     string
}
