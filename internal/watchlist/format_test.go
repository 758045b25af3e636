package watchlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanList(t *testing.T) {
	assert.Equal(t, "", HumanList(nil))
	assert.Equal(t, "a", HumanList([]string{"a"}))
	assert.Equal(t, "a and b", HumanList([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", HumanList([]string{"a", "b", "c"}))
}

func TestIsAre(t *testing.T) {
	assert.Equal(t, "is", isAre(1))
	assert.Equal(t, "are", isAre(2))
}
