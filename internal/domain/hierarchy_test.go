package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnimalHierarchy(t *testing.T) *TypeHierarchy {
	t.Helper()
	h := NewTypeHierarchy("concept")
	h.AddType("Entity")
	require.NoError(t, h.LinkSupertype("Animal", "Entity"))
	require.NoError(t, h.LinkSupertype("Dog", "Animal"))
	require.NoError(t, h.LinkSupertype("Cat", "Animal"))
	require.NoError(t, h.LinkSupertype("Pet", "Entity"))
	require.NoError(t, h.LinkSupertype("Dog", "Pet"))
	return h
}

func TestTypeHierarchyAddType(t *testing.T) {
	h := NewTypeHierarchy("concept")
	a := h.AddType("Cat")
	b := h.AddType("Cat")
	assert.Same(t, a, b)
	assert.Equal(t, 1, h.Len())
}

func TestTypeHierarchyCopy(t *testing.T) {
	h := newAnimalHierarchy(t)
	require.NoError(t, h.SetValence("Pet", 1))

	cp := h.Copy()
	assert.Equal(t, h.Describe(), cp.Describe())
	assert.True(t, cp.IsProperSubtypeOf("Dog", "Entity"))

	cp.AddType("Fish")
	require.NoError(t, cp.LinkSupertype("Fish", "Animal"))
	assert.False(t, h.Has("Fish"))
	animal, _ := h.Lookup("Animal")
	assert.Len(t, animal.Subtypes(), 2)

	v := NewVocabulary()
	v.Relations.AddType("Owns")
	vc := v.Copy()
	vc.Relations.AddType("Eats")
	assert.True(t, vc.Relations.Has("Owns"))
	assert.False(t, v.Relations.Has("Eats"))
}

func TestTypeHierarchyLinkSupertype(t *testing.T) {
	t.Run("missing supertype", func(t *testing.T) {
		h := NewTypeHierarchy("concept")
		err := h.LinkSupertype("Dog", "Animal")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStructural))
		assert.False(t, h.Has("Dog"))
	})

	t.Run("registers new subtype", func(t *testing.T) {
		h := NewTypeHierarchy("concept")
		h.AddType("Animal")
		require.NoError(t, h.LinkSupertype("Dog", "Animal"))
		assert.True(t, h.Has("Dog"))
		dog, _ := h.Lookup("Dog")
		assert.Equal(t, "Animal", dog.Supertypes()[0].Label())
	})

	t.Run("rejects cycles", func(t *testing.T) {
		h := newAnimalHierarchy(t)
		err := h.LinkSupertype("Entity", "Dog")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStructural))
	})

	t.Run("linking twice is idempotent", func(t *testing.T) {
		h := newAnimalHierarchy(t)
		require.NoError(t, h.LinkSupertype("Dog", "Animal"))
		dog, _ := h.Lookup("Dog")
		assert.Len(t, dog.Supertypes(), 2)
	})
}

func TestTypeHierarchySubtypeQueries(t *testing.T) {
	h := newAnimalHierarchy(t)

	tests := []struct {
		a, b   string
		sub    bool
		proper bool
	}{
		{"Dog", "Dog", true, false},
		{"Dog", "Animal", true, true},
		{"Dog", "Entity", true, true},
		{"Dog", "Pet", true, true},
		{"Cat", "Pet", false, false},
		{"Animal", "Dog", false, false},
		{"Unknown", "Entity", false, false},
		{"Unknown", "Unknown", true, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.sub, h.IsSubtypeOf(tt.a, tt.b), "IsSubtypeOf(%s, %s)", tt.a, tt.b)
		assert.Equal(t, tt.proper, h.IsProperSubtypeOf(tt.a, tt.b), "IsProperSubtypeOf(%s, %s)", tt.a, tt.b)
	}
}

func TestTypeHierarchyDescribe(t *testing.T) {
	h := NewTypeHierarchy("relation")
	h.AddType("Link")
	require.NoError(t, h.LinkSupertype("On", "Link"))
	require.NoError(t, h.SetValence("On", 2))

	assert.Equal(t, "Link\nOn < Link /2\n", h.Describe())
	assert.Equal(t, []string{"Link", "On"}, h.Labels())
}
