package skills

import (
	"strings"

	"github.com/spigell/cv-matcher/internal/profile"
)

// Source records where a mention came from and what it contributed.
type Source struct {
	Section profile.SectionName `json:"section"`
	Context string              `json:"context"`
	Weight  float64             `json:"weight"`
}

// Record is the aggregate of every mention of one skill across a profile.
type Record struct {
	Name            string   `json:"name"`
	TotalWeight     float64  `json:"totalWeight"`
	MaxProficiency  float64  `json:"maxProficiency"`
	YearsExperience float64  `json:"yearsExperience"`
	Sources         []Source `json:"sources"`
}

// Map holds aggregated records keyed by lowercase skill name, remembering the
// order in which skills were first seen.
type Map struct {
	names   []string
	records map[string]*Record
}

// NewMap builds a map from ready-made records. Later records with the same
// name replace earlier ones.
func NewMap(records ...Record) *Map {
	m := &Map{records: make(map[string]*Record, len(records))}
	for _, r := range records {
		key := strings.ToLower(r.Name)
		if _, ok := m.records[key]; !ok {
			m.names = append(m.names, key)
		}
		rec := r
		m.records[key] = &rec
	}
	return m
}

// Get returns the record for a skill name, case-insensitively.
func (m *Map) Get(name string) (Record, bool) {
	if m == nil {
		return Record{}, false
	}
	r, ok := m.records[strings.ToLower(name)]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Names returns skill keys in first-seen order.
func (m *Map) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.names...)
}

// Records returns records in first-seen order.
func (m *Map) Records() []Record {
	out := make([]Record, 0, m.Len())
	for _, name := range m.Names() {
		out = append(out, *m.records[name])
	}
	return out
}

func (m *Map) add(section profile.SectionName, sectionWeight float64, mention Mention) {
	key := strings.ToLower(mention.Name)
	rec, ok := m.records[key]
	if !ok {
		rec = &Record{Name: mention.Name}
		m.records[key] = rec
		m.names = append(m.names, key)
	}

	contribution := mention.Weight * sectionWeight
	rec.TotalWeight += contribution
	rec.Sources = append(rec.Sources, Source{
		Section: section,
		Context: mention.Context,
		Weight:  contribution,
	})
	rec.MaxProficiency = max(rec.MaxProficiency, mention.Proficiency)
	rec.YearsExperience = max(rec.YearsExperience, mention.YearsExperience)
}

// Aggregator runs the extractor over every profile section and folds the
// mentions into one record per skill.
type Aggregator struct {
	cfg       *Config
	extractor *Extractor
}

// NewAggregator returns an aggregator bound to cfg. A nil cfg uses DefaultConfig.
func NewAggregator(cfg *Config) *Aggregator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Aggregator{cfg: cfg, extractor: NewExtractor(cfg)}
}

// Aggregate scans all sections of p in order and returns the skill map.
func (a *Aggregator) Aggregate(p *profile.Profile) *Map {
	m := NewMap()
	for _, section := range p.Sections() {
		weight := a.cfg.SectionWeight(section.Name)
		for _, mention := range a.extractor.Extract(section.Name, section.Content) {
			m.add(section.Name, weight, mention)
		}
	}
	return m
}
