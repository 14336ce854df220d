package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDesignator(t *testing.T) {
	tests := []struct {
		name     string
		d        Designator
		variable bool
		bound    bool
		text     string
	}{
		{"none", Designator{}, false, false, ""},
		{"integer literal", NumberLiteral(3), false, true, "3"},
		{"fractional literal", NumberLiteral(-1.5), false, true, "-1.5"},
		{"string literal", StringLiteral("hi \"there\""), false, true, `"hi \"there\""`},
		{"bool literal", BoolLiteral(true), false, true, "true"},
		{"marker", Marker("42"), false, true, "#42"},
		{"name", Name("Tom"), false, true, "'Tom'"},
		{"defining variable", Name("*x"), true, false, "*x"},
		{"bound variable", Name("?x"), true, false, "?x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.variable, tt.d.IsVariable())
			assert.Equal(t, tt.bound, tt.d.IsBound())
			assert.Equal(t, tt.text, tt.d.String())
		})
	}
}

func TestDesignatorEqual(t *testing.T) {
	assert.True(t, NumberLiteral(3).Equal(NumberLiteral(3)))
	assert.False(t, NumberLiteral(3).Equal(StringLiteral("3")))
	assert.False(t, Marker("1").Equal(Name("1")))
	assert.True(t, Designator{}.Equal(Designator{}))
}

func TestDesignatorVariableKey(t *testing.T) {
	assert.Equal(t, "*x", Name("?x").VariableKey())
	assert.Equal(t, "*x", Name("*x").VariableKey())
	assert.Equal(t, "", Name("x").VariableKey())
}

func TestQuantifier(t *testing.T) {
	assert.Equal(t, "@3", NumericQuantifier(3).String())
	assert.Equal(t, "@every", GenericQuantifier("every").String())
	assert.Equal(t, `@{"a", "b"}`, CollectionQuantifier("", []string{"a", "b"}).String())

	assert.True(t, CollectionQuantifier("set", []string{"a"}).Equal(CollectionQuantifier("set", []string{"a"})))
	assert.False(t, CollectionQuantifier("set", []string{"a"}).Equal(CollectionQuantifier("set", []string{"b"})))
	assert.False(t, NumericQuantifier(2).Equal(Quantifier{}))
}
