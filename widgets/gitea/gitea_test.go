package gitea

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
	_ "github.com/yanizio/informer/widgets/github"
)

func TestGitea_LoadsGitHubFirst(t *testing.T) {
	reg := registry.New(registry.Options{})

	c, err := reg.Resolve(context.Background(), "gitea", "").Wait(context.Background())
	require.NoError(t, err)

	parent, ok := reg.Lookup("github")
	require.True(t, ok, "parent class defined by the dependency load")

	assert.Equal(t, "Gitea", c.Name)
	assert.Equal(t, "gitea", c.TypeName())
	require.NotNil(t, c.New, "alias inherits the parent factory")

	var h widget.Handler = c.New()
	assert.IsType(t, parent.New(), h)
}
