package record

// Collection is an ordered, read-only set of records of a single kind.
// Indices into a collection are the record indices used by the engine.
type Collection struct {
	kind    Kind
	records []Record
}

// NewCollection wraps records of the given kind. The slice is copied so
// later mutation by the caller cannot leak into the collection.
func NewCollection(kind Kind, records []Record) *Collection {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Collection{kind: kind, records: cp}
}

// Messages builds a message collection.
func Messages(msgs []*Message) *Collection {
	recs := make([]Record, len(msgs))
	for i, m := range msgs {
		recs[i] = m
	}
	return &Collection{kind: KindMessage, records: recs}
}

// Events builds an event collection.
func Events(evts []*Event) *Collection {
	recs := make([]Record, len(evts))
	for i, e := range evts {
		recs[i] = e
	}
	return &Collection{kind: KindEvent, records: recs}
}

// Kind returns the kind of every record in the collection.
func (c *Collection) Kind() Kind { return c.kind }

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// At returns the record at index i.
func (c *Collection) At(i int) Record { return c.records[i] }

// Find returns the record with the given ID.
func (c *Collection) Find(id string) (Record, bool) {
	if c == nil {
		return nil, false
	}
	for _, r := range c.records {
		if r.RecordID() == id {
			return r, true
		}
	}
	return nil, false
}

// Pick returns the records at the given indices, in the order given.
// Out-of-range indices are skipped.
func (c *Collection) Pick(indices []int) []Record {
	out := make([]Record, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(c.records) {
			out = append(out, c.records[i])
		}
	}
	return out
}
