// Package roster holds the festival roster: stages, bands, jury members and
// the category catalog.  The roster is replaced wholesale whenever the
// backing store reports a change, and every reader works on an immutable
// Snapshot.
package roster

import (
	"sort"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// Snapshot is an immutable, indexed copy of the roster collections.
type Snapshot struct {
	Stages      []model.Stage
	Bands       []model.Band
	JuryMembers []model.JuryMember
	Categories  []model.Category

	stages     map[int]model.Stage
	bands      map[int]model.Band
	jury       map[model.JuryMemberID]model.JuryMember
	categories map[int]model.Category
}

// NewSnapshot copies and indexes the given collections.  Stages, bands and
// categories are ordered by id; jury members by stage, then id.
func NewSnapshot(stages []model.Stage, bands []model.Band, jury []model.JuryMember, categories []model.Category) *Snapshot {
	s := &Snapshot{
		Stages:      append([]model.Stage(nil), stages...),
		Bands:       append([]model.Band(nil), bands...),
		JuryMembers: append([]model.JuryMember(nil), jury...),
		Categories:  append([]model.Category(nil), categories...),
		stages:      make(map[int]model.Stage, len(stages)),
		bands:       make(map[int]model.Band, len(bands)),
		jury:        make(map[model.JuryMemberID]model.JuryMember, len(jury)),
		categories:  make(map[int]model.Category, len(categories)),
	}
	sort.Slice(s.Stages, func(i, j int) bool { return s.Stages[i].ID < s.Stages[j].ID })
	sort.Slice(s.Bands, func(i, j int) bool { return s.Bands[i].ID < s.Bands[j].ID })
	sort.Slice(s.Categories, func(i, j int) bool { return s.Categories[i].ID < s.Categories[j].ID })
	sort.Slice(s.JuryMembers, func(i, j int) bool {
		if s.JuryMembers[i].StageID != s.JuryMembers[j].StageID {
			return s.JuryMembers[i].StageID < s.JuryMembers[j].StageID
		}
		return s.JuryMembers[i].ID < s.JuryMembers[j].ID
	})
	for _, st := range s.Stages {
		s.stages[st.ID] = st
	}
	for _, b := range s.Bands {
		s.bands[b.ID] = b
	}
	for _, j := range s.JuryMembers {
		s.jury[j.ID] = j
	}
	for _, c := range s.Categories {
		s.categories[c.ID] = c
	}
	return s
}

// Stage looks up a stage by id.
func (s *Snapshot) Stage(id int) (model.Stage, bool) {
	st, ok := s.stages[id]
	return st, ok
}

// Band looks up a band by id.
func (s *Snapshot) Band(id int) (model.Band, bool) {
	b, ok := s.bands[id]
	return b, ok
}

// JuryMember looks up a jury member by id.
func (s *Snapshot) JuryMember(id model.JuryMemberID) (model.JuryMember, bool) {
	j, ok := s.jury[id]
	return j, ok
}

// Category looks up a category by id.
func (s *Snapshot) Category(id int) (model.Category, bool) {
	c, ok := s.categories[id]
	return c, ok
}

// DisciplineOf resolves the discipline a jury member judges.  The lookup is
// the only way a score is attributed to a discipline.
func (s *Snapshot) DisciplineOf(id model.JuryMemberID) (model.Discipline, bool) {
	j, ok := s.jury[id]
	if !ok {
		return "", false
	}
	return j.Discipline, true
}

// CategoriesFor returns the categories of one discipline ordered by id.
func (s *Snapshot) CategoriesFor(d model.Discipline) []model.Category {
	var out []model.Category
	for _, c := range s.Categories {
		if c.Discipline == d {
			out = append(out, c)
		}
	}
	return out
}
