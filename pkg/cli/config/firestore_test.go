package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/cli/config"
)

func TestFirestoreValidate(t *testing.T) {
	gt.NoError(t, (&config.Firestore{}).Validate())
	gt.NoError(t, (&config.Firestore{ProjectID: "p", DatabaseID: "(default)"}).Validate())
	gt.Error(t, (&config.Firestore{ProjectID: "p"}).Validate())
}

func TestFirestoreConfigureMemory(t *testing.T) {
	cfg := config.Firestore{DatabaseID: "(default)"}
	repo, err := cfg.Configure(context.Background())
	gt.NoError(t, err)
	gt.NotNil(t, repo)
	gt.NoError(t, repo.Close())
}
