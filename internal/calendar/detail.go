package calendar

import "github.com/chris-regnier/contentcal/internal/item"

// DetailPanel shows the full, uncapped bucket of one day. At most one day is
// open at a time.
type DetailPanel struct {
	key DayKey
}

// Open shows key's bucket, replacing any open day. An empty bucket leaves the
// panel as it was and returns false.
func (p *DetailPanel) Open(ix Index, key DayKey) ([]item.Item, bool) {
	items := ix.Day(key)
	if len(items) == 0 {
		return nil, false
	}
	p.key = key
	return items, true
}

// Close hides the panel.
func (p *DetailPanel) Close() {
	p.key = ""
}

// Current returns the open day.
func (p *DetailPanel) Current() (DayKey, bool) {
	return p.key, p.key != ""
}

// Items returns the open day's bucket as of ix.
func (p *DetailPanel) Items(ix Index) []item.Item {
	if p.key == "" {
		return nil
	}
	return ix.Day(p.key)
}
