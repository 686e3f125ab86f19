package robot

import "sort"

// DefaultPhrases are the canned phrases behind the voice buttons.
var DefaultPhrases = map[int]string{
	1: "Hello, Hunter.",
	2: "Hunter is so cool.",
	3: "Please do not touch my wheels.",
	4: "Hunter is the greatest.",
}

// Phrases is a read-only phrase table.
type Phrases struct {
	table map[int]string
}

// NewPhrases copies table; an empty table falls back to DefaultPhrases.
func NewPhrases(table map[int]string) *Phrases {
	if len(table) == 0 {
		table = DefaultPhrases
	}
	p := &Phrases{table: make(map[int]string, len(table))}
	for id, text := range table {
		p.table[id] = text
	}
	return p
}

// Lookup returns the phrase for id.
func (p *Phrases) Lookup(id int) (string, bool) {
	text, ok := p.table[id]
	return text, ok
}

// IDs returns the known phrase ids in ascending order.
func (p *Phrases) IDs() []int {
	ids := make([]int, 0, len(p.table))
	for id := range p.table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
