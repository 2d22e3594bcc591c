package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suteetoe/krist-shop/pkg/config"
)

func TestNewCloudinaryRequiresCredentials(t *testing.T) {
	_, err := NewCloudinary(config.CloudinaryConfig{CloudName: "demo"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err := NewCloudinary(config.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: "kirst"})
	require.NoError(t, err)
	assert.Equal(t, "kirst", c.folder)
}

func TestPublicID(t *testing.T) {
	id := PublicID("Summer Sale.PNG")
	assert.True(t, strings.HasPrefix(id, "summer-sale-"), id)
	assert.Len(t, id, len("summer-sale-")+8)

	assert.Len(t, PublicID("???.jpg"), 36)
	assert.NotEqual(t, PublicID("a.png"), PublicID("a.png"))
}
