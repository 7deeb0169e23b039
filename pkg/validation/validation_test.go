package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string  `validate:"required"`
	Energy float64 `validate:"gt=0,finite"`
	Order  int     `validate:"gte=1"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  sample
		fields []string
	}{
		{"valid", sample{Name: "a", Energy: 1, Order: 1}, nil},
		{"missing name", sample{Energy: 1, Order: 1}, []string{"Name"}},
		{"non-positive energy", sample{Name: "a", Energy: 0, Order: 1}, []string{"Energy"}},
		{"infinite energy", sample{Name: "a", Energy: math.Inf(1), Order: 1}, []string{"Energy"}},
		{"several", sample{Energy: -1}, []string{"Name", "Energy", "Order"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var verr *Error
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "sample", verr.Struct)

			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestError_Message(t *testing.T) {
	err := Struct(sample{Name: "a", Energy: 0, Order: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sample")
	assert.Contains(t, err.Error(), "Energy: must satisfy gt=0")
}
