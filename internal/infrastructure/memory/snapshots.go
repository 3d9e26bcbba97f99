package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// turnoverStore y profitStore comparten los mapas de Store; Upsert de Store ya es el del ledger.
type turnoverStore struct{ s *Store }
type profitStore struct{ s *Store }

var (
	_ repository.TurnoverRepository = turnoverStore{}
	_ repository.ProfitRepository   = profitStore{}
)

// Turnover devuelve el adaptador de snapshots de rotación.
func (s *Store) Turnover() repository.TurnoverRepository { return turnoverStore{s} }

// Profit devuelve el adaptador de snapshots de rentabilidad.
func (s *Store) Profit() repository.ProfitRepository { return profitStore{s} }

func normalizeKey(k entity.SnapshotKey) entity.SnapshotKey {
	k.Date = period.Day(k.Date)
	return k
}

func matches(k entity.SnapshotKey, f repository.SnapshotFilter) bool {
	if f.Scope != "" && k.Scope != f.Scope {
		return false
	}
	if f.ScopeKey != "" && k.ScopeKey != f.ScopeKey {
		return false
	}
	if f.ScopeKeys != nil && !slices.Contains(f.ScopeKeys, k.ScopeKey) {
		return false
	}
	if f.Granularity != "" && k.Granularity != f.Granularity {
		return false
	}
	if !f.From.IsZero() && k.Date.Before(period.Day(f.From)) {
		return false
	}
	if !f.To.IsZero() && k.Date.After(period.Day(f.To)) {
		return false
	}
	return true
}

func inRate(rate decimal.Decimal, f repository.SnapshotFilter) bool {
	if f.MinNetRate.Valid && rate.LessThan(f.MinNetRate.Decimal) {
		return false
	}
	return !f.MaxNetRate.Valid || !rate.GreaterThan(f.MaxNetRate.Decimal)
}

func lessKey(a, b entity.SnapshotKey) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Scope != b.Scope {
		return a.Scope < b.Scope
	}
	if a.ScopeKey != b.ScopeKey {
		return a.ScopeKey < b.ScopeKey
	}
	return a.Granularity < b.Granularity
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (t turnoverStore) Upsert(_ context.Context, snap entity.TurnoverSnapshot) error {
	snap.SnapshotKey = normalizeKey(snap.SnapshotKey)
	t.s.mu.Lock()
	t.s.turnover[snap.SnapshotKey] = snap
	t.s.mu.Unlock()
	return nil
}

func (t turnoverStore) List(_ context.Context, f repository.SnapshotFilter) ([]entity.TurnoverSnapshot, error) {
	t.s.mu.RLock()
	out := []entity.TurnoverSnapshot{}
	for k, v := range t.s.turnover {
		if matches(k, f) && (f.StockStatus == "" || v.StockStatus == f.StockStatus) {
			out = append(out, v)
		}
	}
	t.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].SnapshotKey, out[j].SnapshotKey) })
	return page(out, f.Limit, f.Offset), nil
}

func (p profitStore) Upsert(_ context.Context, snap entity.ProfitSnapshot) error {
	snap.SnapshotKey = normalizeKey(snap.SnapshotKey)
	p.s.mu.Lock()
	p.s.profit[snap.SnapshotKey] = snap
	p.s.mu.Unlock()
	return nil
}

func (p profitStore) List(_ context.Context, f repository.SnapshotFilter) ([]entity.ProfitSnapshot, error) {
	p.s.mu.RLock()
	out := []entity.ProfitSnapshot{}
	for k, v := range p.s.profit {
		if matches(k, f) && inRate(v.NetProfitRate, f) {
			out = append(out, v)
		}
	}
	p.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].SnapshotKey, out[j].SnapshotKey) })
	return page(out, f.Limit, f.Offset), nil
}
