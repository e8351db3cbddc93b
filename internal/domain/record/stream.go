package record

// Stream is a pull-based cursor over the records of one type. The producer reads
// the next record only when the consumer calls Next, so a slow consumer slows the read.
type Stream interface {
	// Next advances to the next record. It returns false at the end or on error.
	Next() bool
	// Record returns the current record.
	Record() Record
	// Err returns the error that stopped the stream, if any.
	Err() error
	// Close releases the cursor. It is safe to call more than once.
	Close() error
}

// SliceStream is an in-memory Stream, used by tests and small fixtures.
type SliceStream struct {
	records []Record
	pos     int
	err     error
}

// NewSliceStream streams records in order, then reports err (which may be nil).
func NewSliceStream(records []Record, err error) *SliceStream {
	return &SliceStream{records: records, pos: -1, err: err}
}

// Next implements Stream.
func (s *SliceStream) Next() bool {
	if s.pos+1 >= len(s.records) {
		s.pos = len(s.records)
		return false
	}
	s.pos++
	return true
}

// Record implements Stream.
func (s *SliceStream) Record() Record {
	if s.pos < 0 || s.pos >= len(s.records) {
		return Record{}
	}
	return s.records[s.pos]
}

// Err implements Stream. The error surfaces only once the records are exhausted.
func (s *SliceStream) Err() error {
	if s.pos >= len(s.records) {
		return s.err
	}
	return nil
}

// Close implements Stream.
func (s *SliceStream) Close() error { return nil }

// Consumed returns how many records were handed out.
func (s *SliceStream) Consumed() int {
	if s.pos < 0 {
		return 0
	}
	if s.pos >= len(s.records) {
		return len(s.records)
	}
	return s.pos + 1
}
