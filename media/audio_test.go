package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	for _, tc := range []struct {
		name string
		out  string
		exp  time.Duration
	}{
		{name: "plain seconds", out: "30.000000\n", exp: 30 * time.Second},
		{name: "fractional", out: "3.52", exp: 3520 * time.Millisecond},
		{name: "surrounding whitespace", out: "  12.5\n\n", exp: 12500 * time.Millisecond},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dur, err := parseDuration(tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, dur)
		})
	}

	t.Run("garbage", func(t *testing.T) {
		_, err := parseDuration("N/A")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseDuration("")
		assert.Error(t, err)
	})
}

func TestMinDurationGuard(t *testing.T) {
	// a 3 second capture is treated as a failed download, not real content
	short, err := parseDuration("3.0")
	require.NoError(t, err)
	assert.Less(t, short, MinDuration)

	ok, err := parseDuration("30.0")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ok, MinDuration)
}
