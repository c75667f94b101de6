// Package pool recycles the heavyweight record types that document
// compilation churns through. A Pool keeps one free list per concrete type.
// Records are cleared when first created and again when returned, so a
// borrowed record always starts at its type's documented defaults.
//
// A Pool is not safe for concurrent use. Compilers running in parallel must
// each own their own Pool.
package pool

import "reflect"

// Clearable resets a record to its documented defaults. Every pooled type
// implements it.
type Clearable interface {
	Clear()
}

type ptr[T any] interface {
	*T
	Clearable
}

type Pool struct {
	free map[reflect.Type][]Clearable

	borrowed int
	recycled int
}

func New() *Pool {
	return &Pool{
		free: make(map[reflect.Type][]Clearable),
	}
}

// Borrow returns a recycled *T when one is available and a fresh cleared
// record otherwise.
func Borrow[T any, PT ptr[T]](p *Pool) PT {
	p.borrowed++
	typ := reflect.TypeFor[T]()
	list := p.free[typ]
	if n := len(list); n > 0 {
		obj := list[n-1]
		list[n-1] = nil
		p.free[typ] = list[:n-1]
		return obj.(PT)
	}
	obj := PT(new(T))
	obj.Clear()
	return obj
}

// Return clears obj and stacks it for reuse. obj must not be used again by
// the caller.
func Return[T any, PT ptr[T]](p *Pool, obj PT) {
	if obj == nil {
		return
	}
	p.recycled++
	obj.Clear()
	typ := reflect.TypeFor[T]()
	p.free[typ] = append(p.free[typ], Clearable(obj))
}

// Drain drops every free list.
func (p *Pool) Drain() {
	for typ := range p.free {
		delete(p.free, typ)
	}
}

// Borrowed reports how many records have been handed out over the pool's
// lifetime, Recycled how many came back.
func (p *Pool) Borrowed() int { return p.borrowed }
func (p *Pool) Recycled() int { return p.recycled }

// Idle reports how many cleared records are waiting on free lists.
func (p *Pool) Idle() int {
	n := 0
	for _, list := range p.free {
		n += len(list)
	}
	return n
}
