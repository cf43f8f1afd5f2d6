// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package utf8str provides View, an immutable UTF-8 byte sequence, and Map,
// a hash map keyed by the content of such sequences.
//
// # Map layout
//
// Map uses separate chaining over two flat arrays rather than a tree of
// pointers. The entries array holds keys, values and chain links. The buckets
// array holds, for each hash bucket, 1 + the index of the first entry of its
// chain, so that a zeroed buckets array means "every chain is empty" and can
// be produced by make() or clear() alone.
//
//	buckets (len 4)            entries (len 4, n=3)
//	+---+                      +-----+-------+------+
//	| 0 |                      | key | value | next |
//	+---+                      +-----+-------+------+
//	| 3 | ---------------->  2 | "c" |   3   |  0   | --+
//	+---+                      +-----+-------+------+   |
//	| 2 | ---------------->  1 | "b" |   2   |  -1  |   |
//	+---+                      +-----+-------+------+   |
//	| 0 |                    0 | "a" |   1   |  -1  | <-+
//	+---+                      +-----+-------+------+
//
// New entries are prepended to their chain, so the most recently inserted
// key of a bucket is compared first. Both arrays always have the same power
// of 2 length, which lets a hash be reduced to a bucket index with a mask.
// When the entries array is full it is doubled: entries keep their indexes
// and only the chain links and bucket heads are rebuilt.
//
// Deleted entries are pushed onto a stack of free indexes and reused LIFO by
// the next insertion before any never-used entry is handed out. Entries at
// or above the high water mark n have never been used since the last Clear.
//
// Lookups hash and compare the raw bytes of the key. Lookups by []byte,
// string or UTF-16 never allocate a View, and a UTF-16 key is encoded into a
// stack buffer (or a pooled buffer for long keys) rather than decoding the
// stored keys.
package utf8str

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"sync"
	"unsafe"

	"github.com/cockroachdb/utf8str/utf8scan"
)

const (
	debug = false

	// minCapacity is the smallest entries array a Map is created with.
	minCapacity = 2
	// maxCapacity keeps every entry index, and every 1-based bucket head,
	// representable as an int32.
	maxCapacity = 1 << 30

	// UTF-16 lookup keys whose UTF-8 encoding fits in stackKeySize bytes are
	// encoded on the stack.
	stackKeySize = 256
	// Pooled key buffers larger than this are dropped rather than retained.
	maxPooledKeySize = 64 << 10
)

var (
	// ErrNegativeCapacity is wrapped by the panic of New and Init when the
	// initial capacity is negative.
	ErrNegativeCapacity = errors.New("utf8str: negative capacity")
	// ErrCapacityExhausted is wrapped by the panic raised when a Map would
	// need to grow beyond the largest supported capacity.
	ErrCapacityExhausted = errors.New("utf8str: capacity exhausted")
)

// Entry holds a key and value along with the link to the next entry of its
// bucket chain.
type Entry[V any] struct {
	key   View
	value V
	// next is the index of the next entry in the chain, or -1 at the end of
	// the chain.
	next int32
	// live is false for free entries and entries that were never used.
	live bool
}

type hashFn func(key []byte) uint64

// Map is an unordered map from View keys to values with TryAdd, Put, Get,
// Ptr, Delete, Clear and All operations. Keys are compared by content, so
// any two Views holding the same bytes address the same entry. By default
// keys are hashed with utf8scan.Hash, though a different hash function can be
// specified using the WithHash option.
//
// A Map is NOT goroutine-safe.
type Map[V any] struct {
	hash hashFn
	// The allocator to use for the buckets and entries slices.
	allocator Allocator[V]
	// buckets[i] is 1 + the index in entries of the head of chain i, or 0
	// if chain i is empty. len(buckets) == len(entries), a power of 2.
	buckets []int32
	entries []Entry[V]
	// n is the high water mark: entries[n:] have not been used since the map
	// was created or last cleared.
	n int32
	// free is a stack of the indexes of deleted entries below n.
	free []int32
	// The number of live entries.
	used int
}

// New constructs a new Map with room for at least initialCapacity entries
// before growing. Capacities are rounded up to a power of 2 with a minimum of
// 2. New panics with an error wrapping ErrNegativeCapacity if
// initialCapacity is negative.
func New[V any](initialCapacity int, options ...option[V]) *Map[V] {
	m := &Map[V]{}
	m.Init(initialCapacity, options...)
	return m
}

// Init initializes a Map with the specified initial capacity, as New does.
// The zero value for a Map is not usable until Init is called.
func (m *Map[V]) Init(initialCapacity int, options ...option[V]) {
	if initialCapacity < 0 {
		panic(fmt.Errorf("%w: %d", ErrNegativeCapacity, initialCapacity))
	}
	if initialCapacity > maxCapacity {
		panic(fmt.Errorf("%w: initial capacity %d exceeds %d",
			ErrCapacityExhausted, initialCapacity, maxCapacity))
	}

	*m = Map[V]{
		hash:      utf8scan.Hash,
		allocator: defaultAllocator[V]{},
	}
	for _, op := range options {
		op.apply(m)
	}

	capacity := minCapacity
	if initialCapacity > minCapacity {
		// The smallest power of 2 that is >= initialCapacity.
		capacity = 1 << bits.Len(uint(initialCapacity-1))
	}
	m.buckets = m.allocator.AllocBuckets(capacity)
	m.entries = m.allocator.AllocEntries(capacity)
	m.checkInvariants()
}

// Close closes the map, releasing its memory back to its configured
// allocator. It is unnecessary to close a map using the default allocator. It
// is invalid to use a Map after it has been closed, though Close itself is
// idempotent.
func (m *Map[V]) Close() {
	if m.allocator != nil {
		if m.entries != nil {
			m.allocator.FreeEntries(m.entries)
		}
		if m.buckets != nil {
			m.allocator.FreeBuckets(m.buckets)
		}
	}
	m.buckets = nil
	m.entries = nil
	m.free = nil
	m.n = 0
	m.used = 0
	m.allocator = nil
}

// TryAdd inserts an entry into the map if no entry with an equal key
// exists, returning true. If such an entry exists TryAdd returns false and
// leaves the map unchanged.
func (m *Map[V]) TryAdd(key View, value V) bool {
	h := m.hash(noescapeBytes(key.b))
	b := m.bucketIndex(h)
	if debug {
		fmt.Printf("try-add(%q): h=%016x bucket=%d\n", key.b, h, b)
	}
	for i := m.buckets[b] - 1; i >= 0; i = m.entries[i].next {
		if utf8scan.Equal(key.b, m.entries[i].key.b) {
			if debug {
				fmt.Printf("try-add(exists): index=%d\n", i)
			}
			return false
		}
	}
	m.insert(h, key, value)
	return true
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with an equal key already exists.
func (m *Map[V]) Put(key View, value V) {
	h := m.hash(noescapeBytes(key.b))
	b := m.bucketIndex(h)
	for i := m.buckets[b] - 1; i >= 0; i = m.entries[i].next {
		e := &m.entries[i]
		if utf8scan.Equal(key.b, e.key.b) {
			if debug {
				fmt.Printf("put(updating): index=%d key=%q\n", i, key.b)
			}
			e.value = value
			return
		}
	}
	m.insert(h, key, value)
}

// GetOrAddBytes returns a pointer to the value of the entry whose key holds
// the bytes of key. If there is no such entry, a copy of key is inserted with
// value and added is true. The pointer is valid until the next insertion or
// deletion.
func (m *Map[V]) GetOrAddBytes(key []byte, value V) (p *V, added bool) {
	h := m.hash(noescapeBytes(key))
	b := m.bucketIndex(h)
	for i := m.buckets[b] - 1; i >= 0; i = m.entries[i].next {
		e := &m.entries[i]
		if utf8scan.Equal(key, e.key.b) {
			return &e.value, false
		}
	}
	return m.insert(h, FromBytes(key), value), true
}

// insert adds an entry known not to be in the map and returns a pointer to
// its value. Inserting a key that is already present leaves the map with
// two entries for that key.
func (m *Map[V]) insert(h uint64, key View, value V) *V {
	var i int32
	if k := len(m.free); k > 0 {
		i = m.free[k-1]
		m.free = m.free[:k-1]
		if debug {
			fmt.Printf("insert(reusing): index=%d\n", i)
		}
	} else {
		if int(m.n) == len(m.entries) {
			m.resize()
		}
		i = m.n
		m.n++
	}

	// The bucket index is computed after any resize, which changes the mask.
	b := m.bucketIndex(h)
	e := &m.entries[i]
	e.key = key
	e.value = value
	e.live = true
	e.next = m.buckets[b] - 1
	m.buckets[b] = i + 1
	m.used++
	if debug {
		fmt.Printf("insert: index=%d bucket=%d next=%d key=%q\n", i, b, e.next, key.b)
	}
	m.checkInvariants()
	return &e.value
}

// Get retrieves the value from the map for the specified key, returning
// ok=false if the key is not present.
func (m *Map[V]) Get(key View) (value V, ok bool) {
	return m.GetBytes(key.b)
}

// GetBytes is like Get, but looks up the entry whose key holds the bytes of
// key.
func (m *Map[V]) GetBytes(key []byte) (value V, ok bool) {
	if i := m.find(key); i >= 0 {
		return m.entries[i].value, true
	}
	return value, false
}

// GetString is like Get, but looks up the entry whose key holds the bytes of
// key. The string is not copied.
func (m *Map[V]) GetString(key string) (value V, ok bool) {
	return m.GetBytes(unsafe.Slice(unsafe.StringData(key), len(key)))
}

// GetUTF16 is like Get, but looks up the entry whose key is the UTF-8
// encoding of the UTF-16 code units of key. Unpaired surrogates match
// U+FFFD, as in FromUTF16.
func (m *Map[V]) GetUTF16(key []uint16) (value V, ok bool) {
	if p := m.PtrUTF16(key); p != nil {
		return *p, true
	}
	return value, false
}

// Ptr returns a pointer to the value stored for key, or nil if the key is
// not present. The pointer allows the value to be read and updated in place.
// It is invalidated by any later insertion that grows the map, and by Clear
// and Close.
func (m *Map[V]) Ptr(key View) *V {
	return m.PtrBytes(key.b)
}

// PtrBytes is like Ptr, but looks up the entry whose key holds the bytes of
// key.
func (m *Map[V]) PtrBytes(key []byte) *V {
	if i := m.find(key); i >= 0 {
		return &m.entries[i].value
	}
	return nil
}

// PtrUTF16 is like Ptr, but looks up the entry whose key is the UTF-8
// encoding of the UTF-16 code units of key.
func (m *Map[V]) PtrUTF16(key []uint16) *V {
	if utf16ByteLen(key) <= stackKeySize {
		var buf [stackKeySize]byte
		return m.PtrBytes(noescapeBytes(appendUTF16(buf[:0], key)))
	}

	bp := keyBufPool.Get().(*[]byte)
	defer releaseKeyBuf(bp)
	*bp = appendUTF16((*bp)[:0], key)
	return m.PtrBytes(*bp)
}

// keyBufPool holds the buffers used to encode long UTF-16 lookup keys.
var keyBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 2*stackKeySize)
		return &b
	},
}

func releaseKeyBuf(bp *[]byte) {
	if cap(*bp) > maxPooledKeySize {
		return
	}
	*bp = (*bp)[:0]
	keyBufPool.Put(bp)
}

// find returns the index of the live entry whose key equals key, or -1.
func (m *Map[V]) find(key []byte) int32 {
	h := m.hash(noescapeBytes(key))
	i := m.buckets[m.bucketIndex(h)] - 1
	if debug {
		fmt.Printf("find(%q): h=%016x head=%d\n", key, h, i)
	}
	for i >= 0 {
		e := &m.entries[i]
		if utf8scan.Equal(key, e.key.b) {
			return i
		}
		i = e.next
	}
	return -1
}

// Delete deletes the entry corresponding to the specified key from the map.
// It is a noop to delete a non-existent key.
func (m *Map[V]) Delete(key View) {
	h := m.hash(noescapeBytes(key.b))
	b := m.bucketIndex(h)
	prev := int32(-1)
	for i := m.buckets[b] - 1; i >= 0; prev, i = i, m.entries[i].next {
		e := &m.entries[i]
		if !utf8scan.Equal(key.b, e.key.b) {
			continue
		}
		if debug {
			fmt.Printf("delete: index=%d prev=%d key=%q\n", i, prev, key.b)
		}
		if prev < 0 {
			m.buckets[b] = e.next + 1
		} else {
			m.entries[prev].next = e.next
		}
		// Zero the entry so the key and value can be collected.
		*e = Entry[V]{next: -1}
		m.free = append(m.free, i)
		m.used--
		m.checkInvariants()
		return
	}
}

// Clear deletes all entries from the map, retaining the allocated buckets
// and entries arrays. Pointers previously returned by Ptr are invalidated.
func (m *Map[V]) Clear() {
	clear(m.buckets)
	clear(m.entries[:m.n])
	m.n = 0
	m.free = m.free[:0]
	m.used = 0
	m.checkInvariants()
}

// All calls yield sequentially for each key and value present in the map,
// in the order the entries are laid out. If yield returns false, All stops
// the iteration.
//
// The map may be mutated during iteration, though there is no guarantee
// that the mutations will be visible to the iteration.
func (m *Map[V]) All(yield func(key View, value V) bool) {
	// Snapshot the entries and the high water mark so that iteration remains
	// valid if the map is resized during iteration.
	entries, n := m.entries, m.n
	for i := int32(0); i < n; i++ {
		e := &entries[i]
		if e.live && !yield(e.key, e.value) {
			return
		}
	}
}

// Len returns the number of entries in the map.
func (m *Map[V]) Len() int {
	return m.used
}

// capacity returns the length of the entries array.
func (m *Map[V]) capacity() int {
	return len(m.entries)
}

// bucketIndex reduces hash value h to an index into buckets.
func (m *Map[V]) bucketIndex(h uint64) int {
	return int(h & uint64(len(m.buckets)-1))
}

// resize doubles the capacity of the map. Entries keep their indexes and
// every live entry is relinked into the larger buckets array.
func (m *Map[V]) resize() {
	oldCapacity := len(m.entries)
	newCapacity := grownCapacity(oldCapacity)
	if debug {
		fmt.Printf("resize: capacity=%d->%d used=%d\n", oldCapacity, newCapacity, m.used)
	}

	entries := m.allocator.AllocEntries(newCapacity)
	copy(entries, m.entries[:m.n])
	buckets := m.allocator.AllocBuckets(newCapacity)
	mask := uint64(newCapacity - 1)
	// Relinking in index order keeps the most recently added entry of each
	// chain at its head.
	for i := int32(0); i < m.n; i++ {
		e := &entries[i]
		if !e.live {
			continue
		}
		b := m.hash(noescapeBytes(e.key.b)) & mask
		e.next = buckets[b] - 1
		buckets[b] = i + 1
	}

	m.allocator.FreeEntries(m.entries)
	m.allocator.FreeBuckets(m.buckets)
	m.entries = entries
	m.buckets = buckets
	m.checkInvariants()
}

// grownCapacity returns the capacity a map of the given capacity grows to.
// It panics if the map is already at maxCapacity.
func grownCapacity(capacity int) int {
	if capacity >= maxCapacity {
		panic(fmt.Errorf("%w: cannot grow beyond %d entries", ErrCapacityExhausted, capacity))
	}
	return 2 * capacity
}

func (m *Map[V]) checkInvariants() {
	if invariants {
		if c := len(m.entries); c < minCapacity || c&(c-1) != 0 {
			panic(fmt.Sprintf("invariant failed: capacity %d is not a power of 2 >= %d\n%s",
				c, minCapacity, m.debugString()))
		}
		if len(m.buckets) != len(m.entries) {
			panic(fmt.Sprintf("invariant failed: %d buckets, but %d entries\n%s",
				len(m.buckets), len(m.entries), m.debugString()))
		}

		// Every entry below the high water mark is either live or free, and
		// every live entry can be found by its key.
		var used int
		for i := int32(0); i < m.n; i++ {
			e := &m.entries[i]
			if !e.live {
				continue
			}
			used++
			if j := m.find(e.key.b); j != i {
				panic(fmt.Sprintf("invariant failed: entry(%d): %q found at %d\n%s",
					i, e.key.b, j, m.debugString()))
			}
		}
		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d live entries, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
		if used+len(m.free) != int(m.n) {
			panic(fmt.Sprintf("invariant failed: %d live + %d free entries != high water mark %d\n%s",
				used, len(m.free), m.n, m.debugString()))
		}
		for _, i := range m.free {
			if i < 0 || i >= m.n || m.entries[i].live {
				panic(fmt.Sprintf("invariant failed: free index %d is not a free entry\n%s",
					i, m.debugString()))
			}
		}
		for i := int(m.n); i < len(m.entries); i++ {
			if m.entries[i].live {
				panic(fmt.Sprintf("invariant failed: entry(%d) above high water mark %d is live\n%s",
					i, m.n, m.debugString()))
			}
		}

		// The chains partition the live entries.
		var chained int
		for b, head := range m.buckets {
			for i := head - 1; i >= 0; i = m.entries[i].next {
				if !m.entries[i].live {
					panic(fmt.Sprintf("invariant failed: bucket(%d) links to dead entry %d\n%s",
						b, i, m.debugString()))
				}
				chained++
				if chained > m.used {
					panic(fmt.Sprintf("invariant failed: chains hold more than %d entries\n%s",
						m.used, m.debugString()))
				}
			}
		}
		if chained != m.used {
			panic(fmt.Sprintf("invariant failed: chains hold %d entries, but used count is %d\n%s",
				chained, m.used, m.debugString()))
		}
	}
}

func (m *Map[V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  n=%d  free=%v\n", len(m.entries), m.used, m.n, m.free)
	for b, head := range m.buckets {
		if head == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  bucket %4d:", b)
		for i := head - 1; i >= 0 && int(i) < len(m.entries); i = m.entries[i].next {
			fmt.Fprintf(&buf, " %d", i)
			if !m.entries[i].live {
				buf.WriteString("(dead)")
				break
			}
		}
		buf.WriteString("\n")
	}
	for i := int32(0); i < m.n; i++ {
		e := &m.entries[i]
		if e.live {
			fmt.Fprintf(&buf, "  %4d: %q [h=%016x next=%d]\n", i, e.key.b, m.hash(noescapeBytes(e.key.b)), e.next)
		} else {
			fmt.Fprintf(&buf, "  %4d: free\n", i)
		}
	}
	return buf.String()
}

// noescape hides a pointer from escape analysis.  noescape is
// the identity function but escape analysis doesn't think the
// output depends on the input.  noescape is inlined and currently
// compiles down to zero instructions.
// USE CAREFULLY!
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}

// noescapeBytes hides b from escape analysis so that keys passed to the hash
// function, which the compiler cannot see through, may live on the stack.
// The hash function must not retain its argument.
func noescapeBytes(b []byte) []byte {
	return unsafe.Slice((*byte)(noescape(unsafe.Pointer(unsafe.SliceData(b)))), len(b))
}
