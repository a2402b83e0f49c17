// Package example bundles a couple of ruleblocks via embed.FS and
// compiles them at package-load time, mirroring the teacher's
// example/basic/example.go (sqlcode.MustInclude) — retargeted at
// picorules.Compile since there is no database to call here.
package example

import (
	"embed"

	"gopkg.in/yaml.v3"

	"github.com/asaabey/picorules"
)

//go:embed ruleblocks.yaml
var batchFS embed.FS

type batchConfig struct {
	Ruleblocks []struct {
		Name     string `yaml:"name"`
		Text     string `yaml:"text"`
		IsActive *bool  `yaml:"isActive"`
	} `yaml:"ruleblocks"`
}

func mustLoadBatch() []picorules.RuleblockInput {
	raw, err := batchFS.ReadFile("ruleblocks.yaml")
	if err != nil {
		panic(err)
	}
	var cfg batchConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		panic(err)
	}
	out := make([]picorules.RuleblockInput, 0, len(cfg.Ruleblocks))
	for _, rb := range cfg.Ruleblocks {
		isActive := true
		if rb.IsActive != nil {
			isActive = *rb.IsActive
		}
		out = append(out, picorules.RuleblockInput{Name: rb.Name, Text: rb.Text, IsActive: isActive})
	}
	return out
}

func mustCompile(opts picorules.Options) picorules.Result {
	res := picorules.Compile(mustLoadBatch(), opts)
	if !res.Success {
		panic(res.Errors)
	}
	return res
}

// Compiled is the result of compiling the bundled ruleblocks against the
// PostgreSQL dialect, computed once at package-load time.
var Compiled = mustCompile(picorules.Options{Dialect: "postgresql"})
