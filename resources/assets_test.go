package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconsEmbedded(t *testing.T) {
	for _, name := range []string{IconMouse, IconCrown, IconTray, IconTrayBlocked} {
		resource, err := Icon(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, resource.Name())
		assert.Contains(t, string(resource.Content()), "<svg")
	}
}

func TestIconCached(t *testing.T) {
	first := MustIcon(IconCrown)
	assert.Same(t, first, MustIcon(IconCrown))
}

func TestMissingIcon(t *testing.T) {
	_, err := Icon("absent.svg")
	assert.Error(t, err)
	assert.Panics(t, func() { MustIcon("absent.svg") })
}
