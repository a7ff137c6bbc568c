package object_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/appserverkit/appserver/pkg/object"
)

func TestSet_ChangeDetection(t *testing.T) {
	tests := []struct {
		name        string
		initial     *string
		value       string
		wantChanged bool
	}{
		{name: "zero value on absent property", value: "", wantChanged: false},
		{name: "new value on absent property", value: "x", wantChanged: true},
		{name: "same value", initial: ptr("x"), value: "x", wantChanged: false},
		{name: "different value", initial: ptr("x"), value: "y", wantChanged: true},
		{name: "back to zero value", initial: ptr("x"), value: "", wantChanged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := object.NewKey[string]("Label")
			rec := &recorder{}
			o, err := object.New()
			require.NoError(t, err)

			if tt.initial != nil {
				_, err := object.Set(o, key, *tt.initial)
				require.NoError(t, err)
			}
			o.AddHandler(rec)

			changed, err := object.Set(o, key, tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.wantChanged, changed)

			if tt.wantChanged {
				require.Equal(t, []string{"changed:Label"}, rec.Events())
			} else {
				require.Empty(t, rec.Events())
			}

			got, err := object.Get(o, key, "default")
			require.NoError(t, err)
			if tt.initial == nil && !tt.wantChanged {
				require.Equal(t, "default", got)
			} else {
				require.Equal(t, tt.value, got)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestGet_Default(t *testing.T) {
	o, err := object.New()
	require.NoError(t, err)

	v, err := object.Get(o, object.NewKey[int]("Missing"), 7)
	require.NoError(t, err)
	require.Equal(t, 7, v)

	calls := 0
	v, err = object.GetFunc(o, object.NewKey[int]("Missing"), func(s *object.Scope, name string) int {
		calls++
		require.Equal(t, "Missing", name)
		return 9
	})
	require.NoError(t, err)
	require.Equal(t, 9, v)
	require.Equal(t, 1, calls)

	// The provider result is not stored.
	v, err = object.Get(o, object.NewKey[int]("Missing"), 0)
	require.NoError(t, err)
	require.Equal(t, 0, v)
}

func TestGetFunc_ProviderRunsUnderLock(t *testing.T) {
	o, err := object.New()
	require.NoError(t, err)
	other := object.NewKey[int]("Other")

	_, err = object.Set(o, other, 3)
	require.NoError(t, err)

	v, err := object.GetFunc(o, object.NewKey[int]("Derived"), func(s *object.Scope, _ string) int {
		n, err := object.Load(s, other, 0)
		require.NoError(t, err)
		return n * 10
	})
	require.NoError(t, err)
	require.Equal(t, 30, v)
}

func TestGetFunc_NilProvider(t *testing.T) {
	o, err := object.New()
	require.NoError(t, err)

	_, err = object.GetFunc[int](o, object.NewKey[int]("n"), nil)
	require.ErrorIs(t, err, object.ErrInvalidArgument)
}

func TestPropertyName_Validation(t *testing.T) {
	o, err := object.New()
	require.NoError(t, err)

	_, err = object.Set(o, object.NewKey[int]("   "), 1)
	require.ErrorIs(t, err, object.ErrInvalidArgument)

	_, err = object.Get(o, object.NewKey[int](""), 0)
	require.ErrorIs(t, err, object.ErrInvalidArgument)

	// Names are trimmed.
	_, err = object.Set(o, object.NewKey[int](" Count "), 4)
	require.NoError(t, err)
	v, err := object.Get(o, object.NewKey[int]("Count"), 0)
	require.NoError(t, err)
	require.Equal(t, 4, v)
}

func TestWithProperties_Strict(t *testing.T) {
	o, err := object.New(
		object.WithTypeName("test.Counter"),
		object.WithProperties("Count", " Label "),
	)
	require.NoError(t, err)

	_, err = object.Set(o, object.NewKey[int]("Count"), 1)
	require.NoError(t, err)
	_, err = object.Set(o, object.NewKey[string]("Label"), "a")
	require.NoError(t, err)

	_, err = object.Set(o, object.NewKey[int]("Other"), 1)
	require.ErrorIs(t, err, object.ErrUnknownProperty)
	require.Contains(t, err.Error(), "test.Counter.Other")

	_, err = object.Get(o, object.NewKey[int]("Other"), 0)
	require.ErrorIs(t, err, object.ErrUnknownProperty)
}

func TestPropertyType_Mismatch(t *testing.T) {
	o, err := object.New()
	require.NoError(t, err)

	_, err = object.Set(o, object.NewKey[int]("Value"), 1)
	require.NoError(t, err)

	v, err := object.Get(o, object.NewKey[string]("Value"), "def")
	require.ErrorIs(t, err, object.ErrPropertyType)
	require.Equal(t, "", v)

	_, err = object.Set(o, object.NewKey[string]("Value"), "x")
	require.ErrorIs(t, err, object.ErrPropertyType)
}

type pair struct {
	A, B int
}

func TestGetFunc_NoTornReads(t *testing.T) {
	o, err := object.New()
	require.NoError(t, err)
	key := object.NewKey[pair]("Pair")

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := object.Set(o, key, pair{A: i, B: i}); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				p, err := object.GetFunc(o, key, func(*object.Scope, string) pair {
					return pair{A: -1, B: -1}
				})
				if err != nil {
					t.Error(err)
					return
				}
				if p.A != p.B {
					t.Errorf("torn read: %+v", p)
					return
				}
			}
		}()
	}

	// Readers finish on their own; then stop the writer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			v, _ := object.Get(o, key, pair{})
			if v.A > 100 {
				return
			}
		}
	}()
	<-done
	close(stop)
	wg.Wait()
}

func TestScope_LookupLoadPut(t *testing.T) {
	rec := &recorder{}
	o, err := object.New(object.WithHandler(rec))
	require.NoError(t, err)
	key := object.NewKey[int]("n")

	err = o.Do(func(s *object.Scope) error {
		_, ok, err := object.Lookup(s, key)
		require.NoError(t, err)
		require.False(t, ok)

		changed, err := object.Put(s, key, 5)
		require.NoError(t, err)
		require.True(t, changed)

		// Queued, not yet delivered.
		require.Empty(t, rec.Events())

		v, err := object.Load(s, key, 0)
		require.NoError(t, err)
		require.Equal(t, 5, v)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"changed:n"}, rec.Events())
}

func TestSet_UncomparableValues(t *testing.T) {
	rec := &recorder{}
	o, err := object.New(object.WithHandler(rec))
	require.NoError(t, err)

	items := object.NewKey[any]("Items")

	changed, err := object.Set(o, items, any([]int{1}))
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = object.Set(o, items, any([]int{2}))
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = object.Set(o, items, any([]int{2}))
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = object.Set(o, items, any(map[string]int{"a": 1}))
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = object.Set(o, items, any(nil))
	require.NoError(t, err)
	require.True(t, changed)

	require.Equal(t, []string{"changed:Items", "changed:Items", "changed:Items", "changed:Items"}, rec.Events())

	tags := object.NewKey[[]string]("Tags")
	changed, err = object.Set(o, tags, nil)
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = object.Set(o, tags, []string{"a"})
	require.NoError(t, err)
	require.True(t, changed)

	v, err := object.Get(o, tags, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, v)
}
