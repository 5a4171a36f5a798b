package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibejo/shift-billing/internal/common"
)

func TestLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses runs", in: "a   b\t\tc", want: "a b c"},
		{name: "trims ends", in: "  hola  ", want: "hola"},
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \t ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Line(tt.in))
		})
	}
}

func TestCleanupNumberSpacing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "space before separator", in: "1 234,50", want: "1234,50"},
		{name: "space after separator", in: "1234, 50", want: "1234,50"},
		{name: "both sides", in: "1 , 5", want: "1,5"},
		{name: "period separator", in: "8 . 25", want: "8.25"},
		{name: "untouched text", in: "JUAN PEREZ 8,25", want: "JUAN PEREZ 8,25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanupNumberSpacing(tt.in))
		})
	}
}

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{name: "thousands and decimals", in: "1.234,56", want: 1234.56},
		{name: "plain decimal", in: "8,25", want: 8.25},
		{name: "integer", in: "10", want: 10},
		{name: "thousands only", in: "1.000", want: 1000},
		{name: "padded", in: " 12,5 ", want: 12.5},
		{name: "not a number", in: "SIMANCAS", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocaleNumber(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrFormat)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNameKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain upper-cases", in: "Juan Perez", want: "JUAN PEREZ"},
		{name: "accents fold", in: "José Muñoz", want: "JOSE MUNOZ"},
		{name: "punctuation stripped", in: "PEREZ, JUAN (T-2)", want: "PEREZ JUAN T2"},
		{name: "whitespace collapsed", in: "  JUAN   PEREZ ", want: "JUAN PEREZ"},
		{name: "digits kept", in: "ruta v429", want: "RUTA V429"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameKey(tt.in))
		})
	}
}

// NameKey must be idempotent: accent variants collapse to one key and the
// key maps to itself.
func TestNameKeyIdempotent(t *testing.T) {
	inputs := []string{
		"José Muñoz", "JOSE MUNOZ", "  árbol-ñandú ", "Ángel Muñoz (PIBEJO)",
		"TRANSPORTES SIMANCAS", "1.234,56", "",
	}
	for _, in := range inputs {
		once := NameKey(in)
		assert.Equal(t, once, NameKey(once), "NameKey not idempotent for %q", in)
	}
}

func TestNameKeyCollision(t *testing.T) {
	// Accent and punctuation variants of one name collide to the same key.
	assert.Equal(t, NameKey("Ángel Muñoz"), NameKey("ANGEL MUNOZ"))
	assert.Equal(t, NameKey("jose. perez"), NameKey("JOSÉ PÉREZ"))
}

func TestPlateKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dashes stripped", in: "1234-abc", want: "1234ABC"},
		{name: "spaces stripped", in: " 1234 ABC ", want: "1234ABC"},
		{name: "already clean", in: "5678XYZ", want: "5678XYZ"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlateKey(tt.in))
		})
	}
}
