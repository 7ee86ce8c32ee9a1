package query

import (
	"github.com/wesm/askvault/internal/contextual"
	"github.com/wesm/askvault/internal/daterange"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/record"
)

// Path names the branch that produced an outcome's candidate set.
type Path string

const (
	PathNone        Path = ""
	PathContextual  Path = "contextual"
	PathTeamTopic   Path = "team-topic"
	PathImplicitAnd Path = "implicit-and"
	PathBoolean     Path = "boolean"
)

// Outcome is the result of one query along with the intermediate decisions
// that produced it.
type Outcome struct {
	Query    string               `json:"query"`
	Intent   nlp.Intent           `json:"intent,omitempty"`
	Kind     record.Kind          `json:"kind"`
	Entities nlp.Entities         `json:"entities,omitempty"`
	Dates    daterange.Constraint `json:"dates"`
	Path     Path                 `json:"path,omitempty"`
	Filters  contextual.Filters   `json:"filters,omitempty"`
	Terms    []string             `json:"terms,omitempty"`

	// Postfix and CompileError are set when the boolean compiler ran.
	Postfix      []string `json:"postfix,omitempty"`
	CompileError string   `json:"compile_error,omitempty"`

	Indices []int           `json:"indices"`
	Records []record.Record `json:"records"`
}

// Count is the number of matching records.
func (o *Outcome) Count() int { return len(o.Records) }

// Page returns up to limit records starting at offset.
func (o *Outcome) Page(offset, limit int) []record.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(o.Records) {
		return []record.Record{}
	}
	end := len(o.Records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return o.Records[offset:end]
}

func emptyOutcome(text string) *Outcome {
	return &Outcome{Query: text, Indices: []int{}, Records: []record.Record{}}
}
