package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRun(t *testing.T) {
	loc := time.UTC
	hours := []int{5, 13}

	assert.Equal(t, time.Date(2026, 3, 1, 5, 0, 0, 0, loc), nextRun(time.Date(2026, 3, 1, 4, 59, 0, 0, loc), hours))
	assert.Equal(t, time.Date(2026, 3, 1, 13, 0, 0, 0, loc), nextRun(time.Date(2026, 3, 1, 5, 0, 0, 0, loc), hours))
	assert.Equal(t, time.Date(2026, 3, 2, 5, 0, 0, 0, loc), nextRun(time.Date(2026, 3, 1, 23, 0, 0, 0, loc), hours))
	assert.Equal(t, time.Date(2026, 4, 1, 5, 0, 0, 0, loc), nextRun(time.Date(2026, 3, 31, 14, 0, 0, 0, loc), hours))
}
