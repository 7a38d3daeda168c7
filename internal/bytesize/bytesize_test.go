package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input string
		want  ByteSize
	}{
		{"1024", 1024},
		{"64KB", 64 * KB},
		{"64Ki", 64 * KiB},
		{"1Gi", GiB},
		{"1.5Gi", ByteSize(1.5 * float64(GiB))},
		{"500Mi", 500 * MiB},
		{"100MB", 100 * MB},
		{"2TiB", 2 * TiB},
		{"  10 mb ", 10 * MB},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseByteSizeErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "10XB", "-5MB", "1.2.3GB"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseByteSize(input)
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("64KB")))
	assert.Equal(t, 64*KB, b)

	assert.Error(t, b.UnmarshalText([]byte("nope")))
}

func TestString(t *testing.T) {
	assert.Equal(t, "512B", ByteSize(512).String())
	assert.Equal(t, "1.00KiB", KiB.String())
	assert.Equal(t, "1.00GiB", GiB.String())
	assert.Equal(t, "2.50MiB", (2*MiB + 512*KiB).String())
}
