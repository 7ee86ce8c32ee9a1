package query

import (
	"log/slog"
	"strings"
	"time"

	"github.com/wesm/askvault/internal/boolexpr"
	"github.com/wesm/askvault/internal/contextual"
	"github.com/wesm/askvault/internal/daterange"
	"github.com/wesm/askvault/internal/indexset"
	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/match"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/record"
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Intent     IntentClassifier
	Entities   EntityExtractor
	Dates      DateResolver
	Contextual *contextual.Extractor

	// Now is the reference clock for relative dates and open recency
	// windows.
	Now func() time.Time

	Logger *slog.Logger
}

// Engine answers queries over one Snapshot.
type Engine struct {
	snap     *Snapshot
	messages *match.Matcher
	events   *match.Matcher

	intent     IntentClassifier
	entities   EntityExtractor
	dates      DateResolver
	contextual *contextual.Extractor
	window     *daterange.Resolver
	now        func() time.Time

	logger *slog.Logger
}

// NewEngine builds an Engine over snap.
func NewEngine(snap *Snapshot, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		snap:       snap,
		messages:   match.New(snap.Collection(record.KindMessage)),
		events:     match.New(snap.Collection(record.KindEvent)),
		intent:     opts.Intent,
		entities:   opts.Entities,
		dates:      opts.Dates,
		contextual: opts.Contextual,
		window:     daterange.NewResolver(now),
		now:        now,
		logger:     logging.Default(opts.Logger).With("component", "query"),
	}
	if e.intent == nil {
		e.intent = nlp.KeywordClassifier{}
	}
	if e.entities == nil {
		e.entities = nlp.NewMetadataExtractor(snap.Metadata)
	}
	if e.dates == nil {
		e.dates = nlp.NewDateParser(now)
	}
	if e.contextual == nil {
		e.contextual = contextual.NewExtractor(nil, nil)
	}
	return e
}

// Snapshot returns the record store the engine was built from.
func (e *Engine) Snapshot() *Snapshot { return e.snap }

// Now returns the engine's reference time.
func (e *Engine) Now() time.Time { return e.now() }

// Matcher returns the term matcher bound to kind's collection.
func (e *Engine) Matcher(kind record.Kind) *match.Matcher {
	if kind == record.KindEvent {
		return e.events
	}
	return e.messages
}

// KindFor maps an intent to the collection it selects. Only an event
// intent selects events.
func KindFor(intent nlp.Intent) record.Kind {
	if intent == nlp.IntentEvent {
		return record.KindEvent
	}
	return record.KindMessage
}

// Ask resolves text to the matching records. Blank input yields an empty
// outcome without consulting any collaborator.
func (e *Engine) Ask(text string) *Outcome {
	if strings.TrimSpace(text) == "" {
		return emptyOutcome(text)
	}
	start := time.Now()

	out := emptyOutcome(text)
	out.Intent = e.intent.Classify(text)
	out.Kind = KindFor(out.Intent)
	m := e.Matcher(out.Kind)

	out.Entities = e.entities.Extract(text)
	out.Dates = e.dates.Resolve(text)

	var candidates *indexset.Set
	out.Filters = e.contextual.Extract(text, out.Entities[nlp.People])
	if !out.Filters.Empty() {
		out.Path = PathContextual
		candidates = e.byRoles(m, out.Filters)
	} else {
		candidates = e.byTerms(m, text, out)
	}

	kept := e.window.Apply(out.Dates, text, m.Collection(), candidates)
	out.Indices = kept.Slice()
	out.Records = m.Collection().Pick(out.Indices)

	e.logger.Debug("query resolved",
		"intent", out.Intent,
		"path", out.Path,
		"dates", out.Dates.String(),
		"candidates", candidates.Len(),
		"results", out.Count(),
		"elapsed", time.Since(start))
	return out
}

// byRoles intersects the per-role lookups of every filter.
func (e *Engine) byRoles(m *match.Matcher, filters contextual.Filters) *indexset.Set {
	var sets []*indexset.Set
	for _, role := range match.Roles {
		if person, ok := filters[role]; ok {
			sets = append(sets, m.MatchRole(role, person))
		}
	}
	return indexset.Intersect(sets...)
}

// byTerms runs the team/topic rule, or the implicit-AND with an optional
// boolean override.
func (e *Engine) byTerms(m *match.Matcher, text string, out *Outcome) *indexset.Set {
	out.Terms = out.Entities.Labels()
	if len(out.Terms) == 0 {
		out.Terms = DeriveTerms(text)
	}

	if out.Entities.Has(nlp.Teams) && out.Entities.Has(nlp.Topics) {
		out.Path = PathTeamTopic
		var teams, topics []*indexset.Set
		for _, team := range out.Entities[nlp.Teams] {
			teams = append(teams, m.Exact(record.FieldTeam, team))
		}
		for _, topic := range out.Entities[nlp.Topics] {
			topics = append(topics, m.MatchField(record.FieldTopic, topic))
		}
		return indexset.Union(teams...).And(indexset.Union(topics...))
	}

	out.Path = PathImplicitAnd
	result := m.Universe()
	for _, term := range out.Terms {
		result = result.And(m.Match(term))
	}

	if !HasBooleanCue(text) {
		return result
	}
	set, compiled := boolexpr.Run(text, m)
	out.Postfix = compiled.Postfix
	if !compiled.OK() {
		out.CompileError = compiled.Err.Error()
		e.logger.Debug("boolean override failed, keeping implicit-and result",
			"query", text, "error", compiled.Err)
		return result
	}
	out.Path = PathBoolean
	return set
}

// HasBooleanCue reports whether text contains "and", "or" or "not" anywhere,
// case-insensitively, including inside other words.
func HasBooleanCue(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "and") || strings.Contains(lower, "or") || strings.Contains(lower, "not")
}
