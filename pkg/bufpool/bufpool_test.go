package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsRequestedLength(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"small", 100},
		{"exact small", DefaultSmallSize},
		{"medium", 32 << 10},
		{"exact medium", DefaultMediumSize},
		{"large", 512 << 10},
		{"oversized", 2 << 20},
	}

	p := NewPool(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := p.Get(tt.size)
			assert.Len(t, buf, tt.size)
			p.Put(buf)
		})
	}
}

func TestPutReuse(t *testing.T) {
	p := NewPool(nil)

	buf := p.Get(DefaultMediumSize)
	assert.Equal(t, DefaultMediumSize, cap(buf))
	p.Put(buf)

	// A following Get of the same class must be usable at full length
	buf2 := p.Get(DefaultMediumSize)
	assert.Len(t, buf2, DefaultMediumSize)
	p.Put(buf2)
}

func TestPutNilIsNoop(t *testing.T) {
	p := NewPool(nil)
	p.Put(nil)
}

func TestOversizedNotPooled(t *testing.T) {
	p := NewPool(&Config{SmallSize: 8, MediumSize: 16, LargeSize: 32})

	buf := p.Get(64)
	assert.Len(t, buf, 64)
	// Returning it must not panic even though it belongs to no tier
	p.Put(buf)
}

func TestGlobalPool(t *testing.T) {
	buf := Get(1024)
	assert.Len(t, buf, 1024)
	Put(buf)
}
