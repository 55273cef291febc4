package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublicID(t *testing.T) {
	id := PublicID("/tmp/My Poster (Final).JPG")
	assert.Regexp(t, `^my-poster-final-[0-9a-f]{12}$`, id)
	assert.NotEqual(t, id, PublicID("/tmp/My Poster (Final).JPG"))

	assert.True(t, strings.HasPrefix(PublicID(".png"), "upload-"))
	assert.LessOrEqual(t, len(PublicID(strings.Repeat("a", 200)+".png")), 60+1+12)
}

func TestNewCloudinaryBuildsClient(t *testing.T) {
	c, err := NewCloudinary("demo", "key", "secret", "cinema", zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, c.cld)
	assert.Equal(t, "cinema", c.folder)
}
