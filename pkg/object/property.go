package object

import (
	"fmt"
	"reflect"
	"strings"
)

// Key identifies a property of type T.
type Key[T any] struct {
	name string
}

// NewKey returns a key for the property with the given name. Surrounding
// whitespace is removed; an empty name is rejected when the key is used.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: normalizeName(name)}
}

// Name returns the property name.
func (k Key[T]) Name() string { return k.name }

func (k Key[T]) String() string { return k.name }

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// checkName validates a property name. It runs before the lock is taken;
// the known set is immutable after New.
func (o *Object) checkName(name string) error {
	if name == "" {
		return invalidArgument("property name is empty")
	}
	if o.known != nil {
		if _, ok := o.known[name]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownProperty, o.typeName, name)
		}
	}
	return nil
}

// Get returns the stored value of key, or def if none is stored.
func Get[T any](o *Object, key Key[T], def T) (T, error) {
	return GetFunc(o, key, func(*Scope, string) T { return def })
}

// GetFunc returns the stored value of key, or the value computed by
// provider if none is stored. The lookup and the provider call form one
// locked unit, so a concurrent Set cannot land between them.
func GetFunc[T any](o *Object, key Key[T], provider func(s *Scope, name string) T) (T, error) {
	var zero T
	if err := o.checkName(key.name); err != nil {
		return zero, err
	}
	if provider == nil {
		return zero, invalidArgument("default value provider is nil")
	}
	return RunExclusive(o, key, func(s *Scope, key Key[T]) (T, error) {
		v, ok, err := Lookup(s, key)
		if err != nil || ok {
			return v, err
		}
		return provider(s, key.name), nil
	})
}

// Set stores v under key if it differs from the current value and reports
// whether it changed. An absent property compares as the zero value of T.
// Values are compared with == when they are comparable and with
// reflect.DeepEqual otherwise. A change raises a PropertyChangedEvent.
func Set[T any](o *Object, key Key[T], v T) (bool, error) {
	if err := o.checkName(key.name); err != nil {
		return false, err
	}
	return RunExclusive(o, v, func(s *Scope, v T) (bool, error) {
		return Put(s, key, v)
	})
}

// Lookup reads key with the lock already held. ok is false when no value is stored.
func Lookup[T any](s *Scope, key Key[T]) (v T, ok bool, err error) {
	s.check()
	if err := s.o.checkName(key.name); err != nil {
		return v, false, err
	}
	raw, ok := s.o.properties[key.name]
	if !ok {
		return v, false, nil
	}
	v, ok = raw.(T)
	if !ok {
		return v, false, fmt.Errorf("%w: %s is %T, not %T", ErrPropertyType, key.name, raw, v)
	}
	return v, true, nil
}

// Load reads key with the lock already held, falling back to def.
func Load[T any](s *Scope, key Key[T], def T) (T, error) {
	v, ok, err := Lookup(s, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Put writes key with the lock already held and reports whether the value
// changed. The change notification is delivered after the lock is released.
func Put[T any](s *Scope, key Key[T], v T) (bool, error) {
	current, _, err := Lookup(s, key)
	if err != nil {
		return false, err
	}
	if equal(current, v) {
		return false, nil
	}
	s.o.properties[key.name] = v
	s.o.raiseChanged(key.name)
	return true, nil
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va := reflect.ValueOf(a)
	if va.Type() != reflect.TypeOf(b) {
		return false
	}
	if va.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
