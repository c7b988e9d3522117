package dataframe

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	xxhash "github.com/cespare/xxhash/v2"

	"github.com/groupframe/groupframe/internal/common"
	"github.com/groupframe/groupframe/internal/config"
	"github.com/groupframe/groupframe/internal/parallel"
)

// GroupIndex is the materialized partition of a table's row positions into
// groups. keys holds one tuple per group; rows holds the matching ordered
// row positions. Groups are ordered by ascending key tuple, missing last,
// so the index is deterministic for a given table and key set.
type GroupIndex struct {
	cols     []string
	colTypes []arrow.DataType
	keys     [][]any
	rows     [][]int
}

// GroupCount returns the number of groups.
func (gi *GroupIndex) GroupCount() int {
	return len(gi.keys)
}

// GroupSizes returns the per-group row counts in group order.
func (gi *GroupIndex) GroupSizes() []int {
	sizes := make([]int, len(gi.rows))
	for i, r := range gi.rows {
		sizes[i] = len(r)
	}
	return sizes
}

// GroupRows returns the full row-position partition in group order.
func (gi *GroupIndex) GroupRows() [][]int {
	return gi.rows
}

// Keys returns the key tuples in group order.
func (gi *GroupIndex) Keys() [][]any {
	return gi.keys
}

// GroupKeysTable returns the group keys as a table, one row per group.
func (gi *GroupIndex) GroupKeysTable() *DataFrame {
	mem := memory.NewGoAllocator()
	cols := make([]ISeries, len(gi.cols))
	for c, name := range gi.cols {
		cells := make([]any, len(gi.keys))
		for g, key := range gi.keys {
			cells[g] = key[c]
		}
		cols[c] = seriesFromCells(name, gi.colTypes[c], cells, mem)
	}
	return New(cols...)
}

// tupleReader reads key tuples row by row from materialized column arrays.
type tupleReader struct {
	arrs []arrow.Array
}

func newTupleReader(df *DataFrame, cols []string) *tupleReader {
	arrs := make([]arrow.Array, len(cols))
	for i, name := range cols {
		if s, ok := df.Column(name); ok {
			arrs[i] = s.Array()
		}
	}
	return &tupleReader{arrs: arrs}
}

func (t *tupleReader) tuple(row int) []any {
	tuple := make([]any, len(t.arrs))
	for i, arr := range t.arrs {
		if arr != nil {
			tuple[i] = cellAt(arr, row)
		}
	}
	return tuple
}

func (t *tupleReader) release() {
	for _, arr := range t.arrs {
		if arr != nil {
			arr.Release()
		}
	}
}

// groupEntry accumulates one group during partitioning.
type groupEntry struct {
	encoded string
	key     []any
	rows    []int
}

// groupTable is an xxhash-keyed partition table. Buckets chain on the
// encoded tuple to stay correct under hash collisions.
type groupTable struct {
	buckets map[uint64][]*groupEntry
}

func newGroupTable() *groupTable {
	return &groupTable{buckets: make(map[uint64][]*groupEntry)}
}

func (t *groupTable) add(encoded string, key []any, row int) {
	h := xxhash.Sum64String(encoded)
	for _, e := range t.buckets[h] {
		if e.encoded == encoded {
			e.rows = append(e.rows, row)
			return
		}
	}
	t.buckets[h] = append(t.buckets[h], &groupEntry{
		encoded: encoded,
		key:     key,
		rows:    []int{row},
	})
}

// merge folds another table's entries in. Row slices stay ascending as long
// as tables are merged in ascending chunk order.
func (t *groupTable) merge(o *groupTable) {
	for h, entries := range o.buckets {
	next:
		for _, e := range entries {
			for _, existing := range t.buckets[h] {
				if existing.encoded == e.encoded {
					existing.rows = append(existing.rows, e.rows...)
					continue next
				}
			}
			t.buckets[h] = append(t.buckets[h], e)
		}
	}
}

func (t *groupTable) entries() []*groupEntry {
	var out []*groupEntry
	for _, chain := range t.buckets {
		out = append(out, chain...)
	}
	return out
}

// buildGroupIndex partitions the table's row positions by the tuple of
// values in the key columns, then sorts the distinct keys lexicographically
// with missing values last. Above the configured row threshold the
// partitioning fans out over contiguous row chunks; merging chunk tables in
// chunk order keeps every group's row sequence ascending, so the result is
// identical to a sequential build.
func buildGroupIndex(df *DataFrame, cols []string) *GroupIndex {
	gi := &GroupIndex{
		cols:     cols,
		colTypes: make([]arrow.DataType, len(cols)),
	}
	for i, name := range cols {
		if s, ok := df.Column(name); ok {
			gi.colTypes[i] = s.DataType()
		}
	}

	n := df.Len()
	reader := newTupleReader(df, cols)
	defer reader.release()

	cfg := config.GetConfig()
	var table *groupTable
	if cfg.ParallelThreshold > 0 && n >= cfg.ParallelThreshold {
		table = partitionParallel(reader, n, cfg.WorkerPoolSize)
	} else {
		table = partitionRange(reader, 0, n)
	}

	entries := table.entries()
	sort.Slice(entries, func(i, j int) bool {
		return common.CompareTuples(entries[i].key, entries[j].key) < 0
	})

	gi.keys = make([][]any, len(entries))
	gi.rows = make([][]int, len(entries))
	for i, e := range entries {
		gi.keys[i] = e.key
		gi.rows[i] = e.rows
	}
	return gi
}

func partitionRange(reader *tupleReader, start, end int) *groupTable {
	table := newGroupTable()
	for row := start; row < end; row++ {
		tuple := reader.tuple(row)
		table.add(common.EncodeTuple(tuple), tuple, row)
	}
	return table
}

func partitionParallel(reader *tupleReader, n, workers int) *groupTable {
	pool := parallel.NewWorkerPool(workers)
	defer pool.Close()

	const minChunk = 1024
	spans := parallel.Spans(n, pool.NumWorkers(), minChunk)

	// Arrow arrays are safe for concurrent reads; each chunk builds its
	// own partition table.
	partials := parallel.MapOrdered(pool, spans, func(_ int, s parallel.Span) *groupTable {
		return partitionRange(reader, s.Start, s.End)
	})

	table := partials[0]
	for _, p := range partials[1:] {
		table.merge(p)
	}
	return table
}
