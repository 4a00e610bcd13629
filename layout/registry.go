package layout

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/typelayout/errors"
)

// registry maps typeKey[V] to the descriptor registered for V.
var registry sync.Map

type typeKey[V any] struct{}

// Register installs d as the descriptor DescriptorFor returns for V, taking
// precedence over Provider and the default. Registering again replaces the
// previous descriptor; composites already declared keep the one they saw.
func Register[V any](d Descriptor) {
	if d == nil {
		panic(errors.NilPointer(errors.PhaseDeclare, []string{typeName[V]()}, "layout.Descriptor"))
	}
	if prev, loaded := registry.Swap(typeKey[V]{}, d); loaded {
		Logger().Debug("descriptor replaced",
			zap.String("type", typeName[V]()),
			zap.String("previous", describe(prev.(Descriptor))),
			zap.String("descriptor", describe(d)))
	}
}

// Unregister removes the descriptor registered for V, if any.
func Unregister[V any]() {
	registry.Delete(typeKey[V]{})
}

// Lookup returns the descriptor registered for V.
func Lookup[V any]() (Descriptor, bool) {
	d, ok := registry.Load(typeKey[V]{})
	if !ok {
		return nil, false
	}
	return d.(Descriptor), true
}

// DescriptorFor returns the descriptor for V: a registered one, else the one
// V or *V provides through Provider, else Of[V]().
func DescriptorFor[V any]() Descriptor {
	if d, ok := Lookup[V](); ok {
		return d
	}
	var z V
	if p, ok := any(z).(Provider); ok {
		return p.LayoutDescriptor()
	}
	if p, ok := any(&z).(Provider); ok {
		return p.LayoutDescriptor()
	}
	return Of[V]()
}

// TypedFor is DescriptorFor restricted to descriptors that hold a V.
// It panics when the resolved descriptor describes another type.
func TypedFor[V any]() Typed[V] {
	d := DescriptorFor[V]()
	td, ok := d.(Typed[V])
	if !ok {
		panic(typeMismatch(nil, describe(d), typeName[V]()))
	}
	return td
}
