package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/repository"
	"github.com/urfave/cli/v3"
)

const emulatorHostEnv = "FIRESTORE_EMULATOR_HOST"

// Firestore selects the storage backend. Without a project ID the service
// keeps its records in process memory.
type Firestore struct {
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for the storage backend
func (f *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "GCP project ID. Records are kept in memory when omitted",
			Category:    "Storage",
			Sources:     cli.EnvVars("ASCENT_FIRESTORE_PROJECT"),
			Destination: &f.ProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Category:    "Storage",
			Value:       "(default)",
			Sources:     cli.EnvVars("ASCENT_FIRESTORE_DATABASE"),
			Destination: &f.DatabaseID,
		},
	}
}

// Validate checks the database selection
func (f *Firestore) Validate() error {
	if f.ProjectID != "" && f.DatabaseID == "" {
		return goerr.New("firestore database ID must not be empty",
			goerr.V("project", f.ProjectID))
	}
	return nil
}

// Configure opens the repository selected by the flags
func (f *Firestore) Configure(ctx context.Context) (interfaces.Repository, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	logger := ctxlog.From(ctx)
	if f.ProjectID == "" {
		logger.Warn("No firestore project given, records are kept in memory and lost on shutdown")
		return repository.NewMemory(), nil
	}

	if host := os.Getenv(emulatorHostEnv); host != "" {
		logger.Info("Connecting to firestore emulator", "host", host)
	}

	repo, err := repository.NewFirestore(ctx, f.ProjectID, f.DatabaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open firestore repository",
			goerr.V("project", f.ProjectID),
			goerr.V("database", f.DatabaseID),
		)
	}
	return repo, nil
}

// LogValue returns structured log value
func (f Firestore) LogValue() slog.Value {
	backend := "firestore"
	if f.ProjectID == "" {
		backend = "memory"
	}
	return slog.GroupValue(
		slog.String("backend", backend),
		slog.String("project", f.ProjectID),
		slog.String("database", f.DatabaseID),
		slog.String("emulator", os.Getenv(emulatorHostEnv)),
	)
}
