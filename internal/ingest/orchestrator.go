package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"csgo-market-data/internal/models"
)

// Fetcher requests the history of one upstream entity.
type Fetcher interface {
	Fetch(ctx context.Context, ref string, bound FetchBound) ([]Sample, error)
}

// Resolver maps an entity key to its upstream type identifier.
type Resolver interface {
	Resolve(key string) (string, bool)
}

// Pacer blocks until the next upstream request may be issued.
// *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Entity is a tracked key together with its upstream reference.
type Entity struct {
	Key string
	Ref string
}

// RowBuilder turns an anchored sample into a storable row.
type RowBuilder func(e Entity, anchor int64, s Sample) (models.AnchoredRow, error)

// Pipeline wires the collaborators for one series type.
type Pipeline struct {
	Series       Series
	Fetcher      Fetcher
	Build        RowBuilder
	Resolver     Resolver // nil: the key is the upstream reference
	Dedup        Deduplicator
	Pacer        Pacer
	Inception    int64
	DropTrailing bool
}

// EntityResult is the outcome for one entity.
type EntityResult struct {
	Key      string
	Inserted int
	Err      error
}

// Summary aggregates one run.
type Summary struct {
	Series   string
	Mode     Mode
	Results  []EntityResult
	Inserted int
	Failed   int
}

// Orchestrator drives all entities of a series through
// plan → fetch → normalize → sort → trailing filter → dedup insert.
type Orchestrator struct {
	p Pipeline
}

func NewOrchestrator(p Pipeline) *Orchestrator {
	if p.Dedup == nil {
		p.Dedup = RowByRow{}
	}
	return &Orchestrator{p: p}
}

// Run processes keys sequentially. A failing entity is logged and skipped;
// only a failure to determine the run mode or a cancelled context ends the run early.
func (o *Orchestrator) Run(ctx context.Context, keys []string) (Summary, error) {
	name := o.p.Series.Name()
	planner, err := NewPlanner(ctx, o.p.Series, o.p.Inception)
	if err != nil {
		return Summary{Series: name}, err
	}

	summary := Summary{Series: name, Mode: planner.Mode()}
	if planner.Mode() == ModeBootstrap {
		log.Printf("[%s] 📊 数据库为空，首次回填历史数据 (maxTime=%d)", name, o.p.Inception)
	} else {
		log.Printf("[%s] 📊 数据库已有数据，增量更新", name)
	}

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			log.Printf("[%s] 运行中断: %v", name, err)
			return summary, err
		}

		log.Printf("[%s] [%d/%d] 正在处理: %s", name, i+1, len(keys), key)
		inserted, err := o.ingestOne(ctx, planner, key)
		summary.Results = append(summary.Results, EntityResult{Key: key, Inserted: inserted, Err: err})
		summary.Inserted += inserted

		switch {
		case err != nil:
			summary.Failed++
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Printf("[%s] 运行中断: %v", name, err)
				return summary, err
			}
			log.Printf("[%s] ❌ %s: %v", name, key, err)
		case inserted > 0:
			log.Printf("[%s] ✅ 已保存 %s 的 %d 条数据", name, key, inserted)
		default:
			log.Printf("[%s] ⚠️  %s 无新数据需要保存", name, key)
		}
	}

	log.Printf("[%s] 处理完成！总共保存了 %d 条数据 (失败 %d/%d)", name, summary.Inserted, summary.Failed, len(keys))
	return summary, nil
}

func (o *Orchestrator) ingestOne(ctx context.Context, planner *Planner, key string) (int, error) {
	entity := Entity{Key: key, Ref: key}
	if o.p.Resolver != nil {
		ref, ok := o.p.Resolver.Resolve(key)
		if !ok {
			return 0, ErrMissingMapping
		}
		entity.Ref = ref
	}

	bound, err := planner.Plan(ctx, key)
	if err != nil {
		return 0, err
	}

	if o.p.Pacer != nil {
		if err := o.p.Pacer.Wait(ctx); err != nil {
			return 0, err
		}
	}
	samples, err := o.p.Fetcher.Fetch(ctx, entity.Ref, bound)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", entity.Ref, err)
	}
	if len(samples) == 0 {
		return 0, ErrDataAbsent
	}

	anchored := normalize(samples)
	if o.p.DropTrailing {
		anchored = DropTrailing(anchored)
	}

	rows := make([]models.AnchoredRow, 0, len(anchored))
	for _, a := range anchored {
		if a.Sample.Err != nil {
			log.Printf("[%s] ⚠️  跳过无效数据 %s@%d: %v", o.p.Series.Name(), key, a.Anchor, a.Sample.Err)
			continue
		}
		row, err := o.p.Build(entity, a.Anchor, a.Sample)
		if err != nil {
			log.Printf("[%s] ⚠️  跳过无效数据 %s@%d: %v", o.p.Series.Name(), key, a.Anchor, err)
			continue
		}
		rows = append(rows, row)
	}

	return o.p.Dedup.InsertNew(ctx, o.p.Series, key, rows)
}

// BuildKline maps a [ts, open, close, high, low, volume, turnover] sample.
func BuildKline(e Entity, anchor int64, s Sample) (models.AnchoredRow, error) {
	if len(s.Values) < 6 {
		return nil, fmt.Errorf("kline sample has %d values, want 6", len(s.Values))
	}
	return &models.KlineRecord{
		MarketHashName: e.Key,
		TypeVal:        e.Ref,
		Timestamp:      anchor,
		OpenPrice:      s.Values[0],
		ClosePrice:     s.Values[1],
		HighPrice:      s.Values[2],
		LowPrice:       s.Values[3],
		Volume:         s.Values[4],
		Turnover:       s.Values[5],
	}, nil
}

// BuildIndex maps a [ts, value] sample.
func BuildIndex(_ Entity, anchor int64, s Sample) (models.AnchoredRow, error) {
	if len(s.Values) < 1 {
		return nil, errors.New("index sample has no value")
	}
	return &models.MarketIndexPoint{IndexValue: s.Values[0], Timestamp: anchor}, nil
}
