package fastrpc

import (
	"reflect"
	"sync"
)

// cache is a concurrency-safe map of reflect.Type to a derived value,
// typically a codec function.
//
// FastRPC can represent recursive types (a nil pointer is a null),
// so derivations may recurse back into the type currently being
// derived. The cache handles this by publishing a forwarding
// value, created by Forward, while the real value is being derived.
type cache[V any] struct {
	// Derive computes the value for a type.
	Derive func(reflect.Type) (V, error)
	// Forward returns a value that defers to the result of get, once
	// it is available.
	Forward func(get func() V) V
	// OnError converts a derivation error into a value, so that
	// forwarding values handed out during a failed derivation
	// report the same error.
	OnError func(error) V

	m sync.Map
}

type cacheEntry[V any] struct {
	val V
	err error
}

// Get returns the value for t, deriving it if necessary.
func (c *cache[V]) Get(t reflect.Type) (V, error) {
	if ent, ok := c.m.Load(t); ok {
		e := ent.(*cacheEntry[V])
		return e.val, e.err
	}

	var (
		wg   sync.WaitGroup
		real V
	)
	wg.Add(1)
	fwd := &cacheEntry[V]{val: c.Forward(func() V {
		wg.Wait()
		return real
	})}
	if ent, loaded := c.m.LoadOrStore(t, fwd); loaded {
		e := ent.(*cacheEntry[V])
		return e.val, e.err
	}

	val, err := c.Derive(t)
	if err != nil {
		real = c.OnError(err)
	} else {
		real = val
	}
	wg.Done()
	c.m.Store(t, &cacheEntry[V]{val, err})
	return val, err
}
