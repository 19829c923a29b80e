package diag

import (
	"fmt"
	"sort"
)

// Bag collects diagnostic records up to a limit.
type Bag struct {
	items []Record
	max   int
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Record, 0, max),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(r Record) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, r)
	return true
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Record {
	return b.items
}

// Sort orders records by file, line, col, severity (desc), code for a
// stable, deterministic processing order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.FilePath != dj.FilePath {
			return di.FilePath < dj.FilePath
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Col != dj.Col {
			return di.Col < dj.Col
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops exact duplicates (same code and position).
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Record, 0, len(b.items))
	for _, r := range b.items {
		key := fmt.Sprintf("%s:%s:%d:%d", r.Code, r.FilePath, r.Line, r.Col)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, r)
	}
	b.items = newitems
}

// ByFile groups records by file path, preserving the bag's order within
// each group.
func (b *Bag) ByFile() map[string][]Record {
	m := make(map[string][]Record)
	for _, r := range b.items {
		m[r.FilePath] = append(m[r.FilePath], r)
	}
	return m
}
