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

package utf8str

// option provide an interface to do work on Map while it is being created.
type option[V any] interface {
	apply(m *Map[V])
}

type hashOption[V any] struct {
	hash func(key []byte) uint64
}

func (op hashOption[V]) apply(m *Map[V]) {
	m.hash = op.hash
}

// WithHash is an option to specify the hash function to use for a Map[V].
// Keys with equal bytes must hash to equal values. The function must not
// retain its argument, which may point into a stack buffer.
func WithHash[V any](hash func(key []byte) uint64) option[V] {
	return hashOption[V]{hash}
}

// Allocator specifies an interface for allocating and releasing memory used
// by a Map. The default allocator utilizes Go's builtin make() and allows the
// GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that entries
// and buckets be freed then Map.Close must be called in order to ensure
// FreeEntries and FreeBuckets are called.
type Allocator[V any] interface {
	// AllocEntries should return a slice equivalent to make([]Entry[V], n).
	AllocEntries(n int) []Entry[V]

	// AllocBuckets should return a slice equivalent to make([]int32, n).
	AllocBuckets(n int) []int32

	// FreeEntries can optional release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocEntries.
	FreeEntries(v []Entry[V])

	// FreeBuckets can optional release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocBuckets.
	FreeBuckets(v []int32)
}

type defaultAllocator[V any] struct{}

func (defaultAllocator[V]) AllocEntries(n int) []Entry[V] {
	return make([]Entry[V], n)
}

func (defaultAllocator[V]) AllocBuckets(n int) []int32 {
	return make([]int32, n)
}

func (defaultAllocator[V]) FreeEntries(v []Entry[V]) {
}

func (defaultAllocator[V]) FreeBuckets(v []int32) {
}

type allocatorOption[V any] struct {
	allocator Allocator[V]
}

func (op allocatorOption[V]) apply(m *Map[V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Map[V].
func WithAllocator[V any](allocator Allocator[V]) option[V] {
	return allocatorOption[V]{allocator}
}
