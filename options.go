package orderedwal

import "github.com/orderedwal/orderedwal/arena"

// magicText and magicVersion identify the file format (spec §6). A WAL
// opened against a file with a different magicText is rejected outright; a
// different magicVersion means a format evolution the running binary
// doesn't understand.
const (
	magicText    uint32 = 0x57414c31 // "WAL1"
	magicVersion uint16 = 1
)

// fileHeader is the arena's reserved region, laid out with HeaderAs.
type fileHeader struct {
	MagicText    uint32
	MagicVersion uint16
	Mode         uint8 // 0 = unique, 1 = mvcc
	_            uint8 // padding
	Reserved     uint64
}

const fileHeaderSize = 16 // keep in step with fileHeader's field sizes

// Options configures a WAL's construction, the register of thirawat27-kvi's
// pkg/config.Config: a plain struct plus DefaultOptions and fluent With*
// setters rather than a functional-options pattern, matching that repo's
// style over the more common Go "options pattern" closures.
type Options struct {
	Capacity     int
	MaxKeySize   int
	MaxValueSize int
	Backing      arena.Backing
	Path         string // required when Backing == arena.File
	Sync         bool   // msync after every commit when true
	ReadOnly     bool
	MVCC         bool
	Comparator   KeyComparator
}

// DefaultOptions returns sane defaults: a 64 MiB heap-backed, unique-mode,
// async WAL with bytewise key ordering.
func DefaultOptions() Options {
	return Options{
		Capacity:     64 << 20,
		MaxKeySize:   1 << 16,
		MaxValueSize: 1 << 24,
		Backing:      arena.Heap,
		Sync:         false,
		MVCC:         false,
		Comparator:   DefaultComparator,
	}
}

func (o Options) WithCapacity(n int) Options       { o.Capacity = n; return o }
func (o Options) WithMaxKeySize(n int) Options      { o.MaxKeySize = n; return o }
func (o Options) WithMaxValueSize(n int) Options     { o.MaxValueSize = n; return o }
func (o Options) WithFile(path string) Options {
	o.Backing = arena.File
	o.Path = path
	return o
}
func (o Options) WithAnon() Options               { o.Backing = arena.Anon; return o }
func (o Options) WithSync(sync bool) Options       { o.Sync = sync; return o }
func (o Options) WithReadOnly(ro bool) Options     { o.ReadOnly = ro; return o }
func (o Options) WithMVCC(mvcc bool) Options       { o.MVCC = mvcc; return o }
func (o Options) WithComparator(c KeyComparator) Options {
	o.Comparator = c
	return o
}

func (o Options) comparatorOrDefault() KeyComparator {
	if o.Comparator == nil {
		return DefaultComparator
	}
	return o.Comparator
}
