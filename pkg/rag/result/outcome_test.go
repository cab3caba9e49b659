package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	ok := Ok([]string{"a"})
	assert.False(t, ok.Degraded())
	assert.Equal(t, []string{"a"}, ok.Value)

	fb := Fallback(0, errors.New("model down"))
	assert.True(t, fb.Degraded())
	assert.EqualError(t, fb.Err, "model down")
}
