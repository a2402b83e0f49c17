package cmd

import (
	"errors"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/asaabey/picorules"
)

// BatchConfig is the on-disk shape of a ruleblocks.yaml file: a plain
// list of named rule texts, following the sqlcode.yaml / Config pattern
// this CLI's teacher uses for its own batch input.
type BatchConfig struct {
	Ruleblocks []RuleblockConfig `yaml:"ruleblocks"`
}

type RuleblockConfig struct {
	Name     string `yaml:"name"`
	Text     string `yaml:"text"`
	IsActive *bool  `yaml:"isActive"`
}

// LoadBatch reads <directory>/ruleblocks.yaml and converts it to the
// []picorules.RuleblockInput shape Compile expects. IsActive defaults to
// true when omitted, matching spec.md §3.
func LoadBatch(directory string) ([]picorules.RuleblockInput, error) {
	filename := path.Join(directory, "ruleblocks.yaml")
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, errors.New("no ruleblocks.yaml found in " + directory)
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cfg BatchConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	out := make([]picorules.RuleblockInput, 0, len(cfg.Ruleblocks))
	for _, rb := range cfg.Ruleblocks {
		isActive := true
		if rb.IsActive != nil {
			isActive = *rb.IsActive
		}
		out = append(out, picorules.RuleblockInput{
			Name:     rb.Name,
			Text:     rb.Text,
			IsActive: isActive,
		})
	}
	return out, nil
}
