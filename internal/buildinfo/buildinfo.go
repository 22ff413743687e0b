// Package buildinfo reads the build metadata bundled with the binary.
package buildinfo

import (
	"embed"
	"io/fs"

	"github.com/magiconair/properties"
	"github.com/pinterest/secor-admin/internal/apperrors"
	"github.com/rs/zerolog"
)

const (
	// ResourceName is the bundled properties file.
	ResourceName = "build.properties"

	// RevisionKey is the property holding the version-control revision.
	RevisionKey = "build_revision"

	// DefaultRevision is reported when the revision cannot be determined.
	DefaultRevision = "unknown"
)

//go:embed build.properties
var bundled embed.FS

// ReadBuildRevision returns the revision recorded in the embedded
// build.properties, or DefaultRevision.
func ReadBuildRevision(logger zerolog.Logger) string {
	return ReadRevision(bundled, ResourceName, logger)
}

// ReadRevision loads the properties file name from fsys and returns its
// build_revision value. A missing or unreadable file, a parse error, or an
// absent or empty key all yield DefaultRevision; load failures are logged.
func ReadRevision(fsys fs.FS, name string, logger zerolog.Logger) string {
	props, err := load(fsys, name)
	if err != nil {
		logger.Error().Err(err).Str("resource", name).Msg("Failed to load build metadata")
		return DefaultRevision
	}

	revision := props.GetString(RevisionKey, DefaultRevision)
	if revision == "" {
		revision = DefaultRevision
	}
	logger.Info().Str("resource", name).Str(RevisionKey, revision).Msg("Build metadata loaded")
	return revision
}

func load(fsys fs.FS, name string) (*properties.Properties, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, &apperrors.ErrBuildMetadata{Resource: name, Err: err}
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, &apperrors.ErrBuildMetadata{Resource: name, Err: err}
	}
	return props, nil
}
