package scan

import "skylog/internal/geo"

// Trace is the first and last known position of a flight within a period.
type Trace struct {
	From geo.Point
	To   geo.Point
}

// Best is the most complete row seen for one flight, plus its trace.
type Best struct {
	Key    string
	Record Record
	Score  int
	Trace  *Trace
}

// Selector reduces a period's rows to one Best per flight key. Keys are kept
// in first-seen order.
type Selector struct {
	order []string
	best  map[string]*Best
}

// NewSelector returns an empty selector.
func NewSelector() *Selector {
	return &Selector{best: make(map[string]*Best)}
}

// Add folds one row into the selection. Rows without a key are ignored.
func (s *Selector) Add(rec Record) {
	key := rec.Key()
	if key == "" {
		return
	}

	score := rec.Score()
	b, ok := s.best[key]
	if !ok {
		b = &Best{Key: key, Record: rec, Score: score}
		s.best[key] = b
		s.order = append(s.order, key)
	} else if score > b.Score {
		b.Record = rec
		b.Score = score
	}

	if pos, ok := rec.Position(); ok {
		if b.Trace == nil {
			b.Trace = &Trace{From: pos, To: pos}
		} else {
			b.Trace.To = pos
		}
	}
}

// Results returns the selected rows in first-seen order.
func (s *Selector) Results() []Best {
	out := make([]Best, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.best[key])
	}
	return out
}

// Select runs a selector over rows.
func Select(rows []Record) []Best {
	s := NewSelector()
	for _, r := range rows {
		s.Add(r)
	}
	return s.Results()
}
