package store

import "sync/atomic"

// Stats holds counters for a Store.
type Stats struct {
	Reads        uint64
	Writes       uint64
	Deletes      uint64
	CacheHits    uint64
	CacheMisses  uint64
	CachedGames  int
	BytesWritten uint64
}

type statsCollector struct {
	reads        uint64
	writes       uint64
	deletes      uint64
	bytesWritten uint64
}

func (s *statsCollector) incrementReads() {
	atomic.AddUint64(&s.reads, 1)
}

func (s *statsCollector) incrementWrites(n int) {
	atomic.AddUint64(&s.writes, 1)
	atomic.AddUint64(&s.bytesWritten, uint64(n))
}

func (s *statsCollector) incrementDeletes() {
	atomic.AddUint64(&s.deletes, 1)
}

func (s *statsCollector) snapshot() Stats {
	return Stats{
		Reads:        atomic.LoadUint64(&s.reads),
		Writes:       atomic.LoadUint64(&s.writes),
		Deletes:      atomic.LoadUint64(&s.deletes),
		BytesWritten: atomic.LoadUint64(&s.bytesWritten),
	}
}
