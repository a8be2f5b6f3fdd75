// Package gitea defines the Gitea repository card.  Gitea mirrors the GitHub
// repository API, so the class is a pure alias of GitHub; the registry loads
// the github unit first when it is not already defined.
package gitea

import (
	"github.com/yanizio/informer/internal/registry"
	"github.com/yanizio/informer/internal/widget"
)

var Class = &widget.Class{
	Name:    "Gitea",
	Extends: "GitHub",
}

func init() {
	registry.RegisterUnit("gitea", func(d registry.Definer) error {
		return d.Define(Class)
	})
}
