package cli

import (
	"context"
	"errors"

	"github.com/valter-silva-au/dmenv/internal/core"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// ProjectOpener builds the Project selected by the global flags. Set during
// app initialization in app.go.
var ProjectOpener func(ctx context.Context, opts models.ProjectOptions) (core.Project, error)

// projectOpts is filled by the persistent flags of the root command.
var projectOpts models.ProjectOptions

func openProject(ctx context.Context) (core.Project, error) {
	if ProjectOpener == nil {
		return nil, errors.New("project opener not initialized")
	}
	return ProjectOpener(ctx, projectOpts)
}
