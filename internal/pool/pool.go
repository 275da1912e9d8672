// Package pool reuses short-lived parser allocations across Parse calls
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a type-safe wrapper around sync.Pool
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T) // called on Put, before the object becomes reusable

	gets atomic.Int64
	news atomic.Int64
}

// New creates a pool whose objects are built by factory
func New[T any](factory func() *T) *Pool[T] {
	p := &Pool[T]{}
	p.pool.New = func() any {
		p.news.Add(1)
		return factory()
	}
	return p
}

// NewWithReset creates a pool that clears objects with reset when they are returned
func NewWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	p := New(factory)
	p.reset = reset
	return p
}

// Get retrieves an object from the pool or creates a new one
func (p *Pool[T]) Get() *T {
	p.gets.Add(1)
	return p.pool.Get().(*T)
}

// Put returns obj for reuse. nil is ignored.
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	if p.reset != nil {
		p.reset(obj)
	}
	p.pool.Put(obj)
}

// Stats returns how many objects were requested and how many had to be built
func (p *Pool[T]) Stats() (gets, news int64) {
	return p.gets.Load(), p.news.Load()
}
