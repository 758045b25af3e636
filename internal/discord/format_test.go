package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `Alice\_X`, EscapeMarkdown("Alice_X"))
	assert.Equal(t, `\*\*bold\*\*`, EscapeMarkdown("**bold**"))
	assert.Equal(t, `back\\slash`, EscapeMarkdown(`back\slash`))
	assert.Equal(t, "plain", EscapeMarkdown("plain"))
}

func TestMentions(t *testing.T) {
	assert.Equal(t, "<@123>", Mention("123"))
	assert.Equal(t, "<@&456>", RoleMention("456"))
}

func TestRelativeTimestamp(t *testing.T) {
	assert.Equal(t, "<t:1700000000:R>", RelativeTimestamp(1700000000123))
}
