package ingest

import (
	"context"
	"fmt"
)

// Mode is the fetch mode of a run, chosen once from the emptiness of the series.
type Mode int

const (
	ModeBootstrap Mode = iota
	ModeIncremental
)

func (m Mode) String() string {
	if m == ModeBootstrap {
		return "bootstrap"
	}
	return "incremental"
}

// FetchBound is what the planner asks upstream for. MaxTime is unix seconds.
type FetchBound struct {
	Mode    Mode
	MaxTime int64
}

// Planner decides the historical bound to request per entity. It keeps no
// state of its own: the stored rows are the checkpoint.
type Planner struct {
	series    Series
	inception int64
	mode      Mode
}

// NewPlanner inspects series once and fixes the run mode.
func NewPlanner(ctx context.Context, series Series, inception int64) (*Planner, error) {
	n, err := series.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("determine %s mode: %w", series.Name(), err)
	}
	mode := ModeIncremental
	if n == 0 {
		mode = ModeBootstrap
	}
	return &Planner{series: series, inception: inception, mode: mode}, nil
}

func (p *Planner) Mode() Mode { return p.mode }

// Plan returns the bound for key. In incremental mode an entity without rows
// (newly watched) falls back to the inception epoch.
func (p *Planner) Plan(ctx context.Context, key string) (FetchBound, error) {
	if p.mode == ModeBootstrap {
		return FetchBound{Mode: ModeBootstrap, MaxTime: p.inception}, nil
	}
	latest, ok, err := p.series.LatestAnchor(ctx, key)
	if err != nil {
		return FetchBound{}, err
	}
	if !ok {
		return FetchBound{Mode: ModeIncremental, MaxTime: p.inception}, nil
	}
	return FetchBound{Mode: ModeIncremental, MaxTime: latest}, nil
}
