package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Policy holds the path of the effort policy file
type Policy struct {
	Path string
}

// Flags returns CLI flags for Policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path of the effort policy YAML file (built-in limits if not set)",
			Category:    "Policy",
			Sources:     cli.EnvVars("ASCENT_POLICY"),
			Destination: &p.Path,
		},
	}
}

// Configure returns the effort policy, falling back to the defaults
func (p *Policy) Configure() (model.EffortPolicy, error) {
	if p.Path == "" {
		return model.DefaultEffortPolicy(), nil
	}
	return LoadPolicyFromFile(p.Path)
}

// LoadPolicyFromFile loads an effort policy from a YAML file. Keys missing
// from the file keep their default values.
func LoadPolicyFromFile(path string) (model.EffortPolicy, error) {
	policy := model.DefaultEffortPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return policy, goerr.Wrap(err, "policy file not found", goerr.V("path", path))
		}
		return policy, goerr.Wrap(err, "failed to read policy file", goerr.V("path", path))
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, goerr.Wrap(err, "failed to parse policy file", goerr.V("path", path))
	}
	if err := policy.Validate(); err != nil {
		return policy, goerr.Wrap(err, "invalid policy", goerr.V("path", path))
	}
	return policy, nil
}

// LogValue returns structured log value
func (p Policy) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", p.Path))
}
