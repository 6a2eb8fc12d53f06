package model

import (
	"errors"
	"strings"
)

// Discipline is one of the two judging dimensions.  It partitions both the
// category catalog and the jury.
type Discipline string

const (
	Musicality Discipline = "musicality"
	Show       Discipline = "show"
)

// Disciplines lists every discipline in display order.
var Disciplines = []Discipline{Musicality, Show}

// ErrUnknownDiscipline is returned by ParseDiscipline for unsupported values.
var ErrUnknownDiscipline = errors.New("unknown discipline")

// ParseDiscipline normalizes a discipline name received at an API or storage
// boundary.  The legacy Dutch label "muzikaliteit" is accepted as an alias.
func ParseDiscipline(s string) (Discipline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "musicality", "muzikaliteit":
		return Musicality, nil
	case "show":
		return Show, nil
	}
	return "", ErrUnknownDiscipline
}

// Valid reports whether d is one of the known disciplines.
func (d Discipline) Valid() bool { return d == Musicality || d == Show }

// Stage is a physical venue of the festival.
//
// Fields:
//
//	ID   – stages.id
//	Name – stages.name
type Stage struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Band is a competing band.  The ID is assigned by the organizers and is the
// join key for every score; the name may be edited at any time.
type Band struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// JuryMemberID is the opaque identifier of a jury member.  It is always a
// string, including for members that were registered with numeric ids.
type JuryMemberID string

// JuryMember judges exactly one discipline at exactly one stage.
type JuryMember struct {
	ID         JuryMemberID `json:"id"`
	Name       string       `json:"name"`
	Discipline Discipline   `json:"discipline"`
	StageID    int          `json:"stage_id"`
}

// Category is an entry of the fixed scoring catalog.
type Category struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Discipline Discipline `json:"discipline"`
}
