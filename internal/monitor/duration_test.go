package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDurationVerbose(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{45 * time.Second, "45 seconds"},
		{time.Minute, "1 minute"},
		{90 * time.Second, "1 minute"},
		{time.Hour + 14*time.Minute, "1 hour 14 minutes"},
		{2*time.Hour + time.Minute, "2 hours 1 minute"},
		{50 * time.Hour, "2 days 2 hours"},
		{49*time.Hour + 74*time.Minute, "2 days 2 hours 14 minutes"},
		{-time.Minute, "0 seconds"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, formatDurationVerbose(c.in), "input %s", c.in)
	}
}
