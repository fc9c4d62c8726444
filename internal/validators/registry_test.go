package validators

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rejectAll(any) error {
	return domain.NewValidationError("rejected", "always rejected")
}

func acceptAll(any) error { return nil }

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib := NewLibrary()
	require.NoError(t, lib.Register("acme.checks.reject_all", Func(rejectAll)))
	require.NoError(t, lib.Register("acme.checks.accept_all", Func(acceptAll)))
	require.NoError(t, lib.Register("acme.checks.MinValueValidator", Func(acceptAll)))
	return lib
}

func TestLibraryImport(t *testing.T) {
	t.Parallel()

	lib := newTestLibrary(t)

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"registered", "acme.checks.reject_all", nil},
		{"no dot", "reject_all", ErrInvalidPath},
		{"trailing dot", "acme.checks.", ErrInvalidPath},
		{"empty segment", "acme..reject_all", ErrInvalidPath},
		{"unknown module", "acme.other.reject_all", ErrModuleNotFound},
		{"unknown attribute", "acme.checks.missing", ErrAttributeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := lib.Import(tc.path)
			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.NotNil(t, c)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, c)
		})
	}

	t.Run("failure modes are distinct", func(t *testing.T) {
		_, err := lib.Import("acme.other.reject_all")
		assert.False(t, errors.Is(err, ErrAttributeNotFound))
		_, err = lib.Import("acme.checks.missing")
		assert.False(t, errors.Is(err, ErrModuleNotFound))
		assert.Contains(t, err.Error(), `module "acme.checks" does not have attribute "missing"`)
	})
}

func TestLibraryRegister(t *testing.T) {
	t.Parallel()

	lib := NewLibrary()
	assert.ErrorIs(t, lib.Register("nodots", Func(acceptAll)), ErrInvalidPath)
	assert.ErrorIs(t, lib.Register("a.b", nil), ErrInvalidPath)
	assert.Panics(t, func() { lib.MustRegister("bad path.x y", Func(acceptAll)) })

	require.NoError(t, lib.Register("a.b.c", Func(acceptAll)))
	require.NoError(t, lib.Register("a.b.d", Func(acceptAll)))
	assert.ElementsMatch(t, []string{"a.b.c", "a.b.d"}, lib.Paths())
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	lib := newTestLibrary(t)
	reg := NewRegistry(lib, map[string]string{
		"no_secrets":        "acme.checks.reject_all",
		"MinValueValidator": "acme.checks.MinValueValidator",
		"broken_module":     "acme.nowhere.reject_all",
		"broken_attribute":  "acme.checks.nothing",
	})

	t.Run("builtin wins over custom", func(t *testing.T) {
		c, found, err := reg.Lookup(MinValue)
		require.NoError(t, err)
		require.True(t, found)
		pred, err := c.Build(Params{"limit_value": 5})
		require.NoError(t, err)
		assert.Error(t, pred(1), "built-in min value must run, not the custom accept-all")
	})

	t.Run("custom name", func(t *testing.T) {
		c, found, err := reg.Lookup("no_secrets")
		require.NoError(t, err)
		require.True(t, found)
		pred, err := c.Build(nil)
		require.NoError(t, err)
		assert.ErrorIs(t, pred("x"), domain.ErrValidation)
	})

	t.Run("unknown name", func(t *testing.T) {
		c, found, err := reg.Lookup("nope")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, c)
		assert.False(t, reg.Known("nope"))
	})

	t.Run("import failures surface", func(t *testing.T) {
		_, found, err := reg.Lookup("broken_module")
		assert.True(t, found)
		assert.ErrorIs(t, err, ErrModuleNotFound)

		_, found, err = reg.Lookup("broken_attribute")
		assert.True(t, found)
		assert.ErrorIs(t, err, ErrAttributeNotFound)
		assert.False(t, reg.Known("broken_attribute"))
	})
}

func TestRegistryCache(t *testing.T) {
	t.Parallel()

	lib := NewLibrary()
	var calls atomic.Int32
	first := Func(func(any) error { calls.Add(1); return nil })
	require.NoError(t, lib.Register("acme.cached.check", first))

	reg := NewRegistry(lib, map[string]string{"check": "acme.cached.check"})
	_, _, err := reg.Lookup("check")
	require.NoError(t, err)

	// Replace the library entry; the cached constructor keeps being served.
	require.NoError(t, lib.Register("acme.cached.check", Func(rejectAll)))
	pred, err := reg.Build("check", nil)
	require.NoError(t, err)
	assert.NoError(t, pred("v"))
	assert.Equal(t, int32(1), calls.Load())

	reg.ClearCache()
	pred, err = reg.Build("check", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, pred("v"), domain.ErrValidation)

	t.Run("configure replaces table", func(t *testing.T) {
		reg.Configure(map[string]string{"renamed": "acme.cached.check"})
		assert.False(t, reg.Known("check"))
		assert.True(t, reg.Known("renamed"))
	})
}

func TestRegistryConcurrentLookup(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLibrary(t), map[string]string{"no_secrets": "acme.checks.reject_all"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, found, err := reg.Lookup("no_secrets")
			assert.NoError(t, err)
			assert.True(t, found)
		}()
	}
	wg.Wait()
}

func TestRegistryBuild(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLibrary(t), nil)

	_, err := reg.Build("does_not_exist", nil)
	assert.ErrorIs(t, err, ErrUnknownValidator)
	assert.Contains(t, err.Error(), "does_not_exist")

	_, err = reg.Build(MinValue, map[string]any{})
	assert.ErrorIs(t, err, ErrInvalidParams)

	pred, err := reg.Build(MaxLength, map[string]any{"limit_value": 2})
	require.NoError(t, err)
	assert.Error(t, pred("abc"))
}

func TestRegistryAvailable(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLibrary(t), map[string]string{
		"even_number":       "acme.checks.accept_all",
		"MinValueValidator": "acme.checks.MinValueValidator",
	})

	available := reg.Available()
	assert.Len(t, available, len(builtins)+1)
	assert.Equal(t, "Minimum value", available[MinValue])
	assert.Equal(t, "IPv6 address validation", available[IPv6])
	assert.Equal(t, "Even Number (custom)", available["even_number"])

	names := reg.Names()
	assert.Len(t, names, len(available))
	assert.IsIncreasing(t, names)
}

func TestCustomLabelNonASCII(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLibrary(t), map[string]string{
		"élan_check": "acme.checks.accept_all",
		"ümlaut":     "acme.checks.accept_all",
	})

	available := reg.Available()
	assert.Equal(t, "Élan Check (custom)", available["élan_check"])
	assert.Equal(t, "Ümlaut (custom)", available["ümlaut"])
	for _, label := range available {
		assert.True(t, utf8.ValidString(label), label)
	}
}

func TestDefaultRegistryUsesDefaultLibrary(t *testing.T) {
	reg := NewRegistry(nil, map[string]string{"x": "paramstore.unregistered.x"})
	_, _, err := reg.Lookup("x")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}
