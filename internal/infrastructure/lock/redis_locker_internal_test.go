package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshEvery(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{ttl: 10 * time.Minute, want: 5 * time.Minute},
		{ttl: time.Second, want: 500 * time.Millisecond},
		{ttl: time.Millisecond, want: 0},
		{ttl: 0, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, refreshEvery(tt.ttl), "ttl %s", tt.ttl)
	}
}
