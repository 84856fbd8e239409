package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyBundle holds unified policy configuration, loadable from a YAML
// file. Nil pointer fields mean "not set in YAML" and do not override
// CLI flag values. String fields use empty string for "not set".
type PolicyBundle struct {
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Behaviour BehaviourConfig `yaml:"behaviour"`
	Mutation  MutationConfig  `yaml:"mutation"`
	Reward    RewardConfig    `yaml:"reward"`
}

// DispatchConfig selects the dispatch policy.
type DispatchConfig struct {
	Policy string `yaml:"policy"`
}

// BehaviourConfig selects the fleet's initial behaviour and its tunables.
type BehaviourConfig struct {
	Default        string   `yaml:"default"`
	MinWaitTime    *int64   `yaml:"min_wait_time"`
	MaxDistance    *float64 `yaml:"max_distance"`
	MinRatio       *float64 `yaml:"min_ratio"`
	EscalationRate *float64 `yaml:"escalation_rate"`
}

// MutationConfig selects the mutation rules applied each tick.
type MutationConfig struct {
	Rules       []string `yaml:"rules"`
	Probability *float64 `yaml:"probability"`
	Threshold   *float64 `yaml:"threshold"`
	Window      *int     `yaml:"window"`
}

// RewardConfig holds the trip pricing coefficients.
type RewardConfig struct {
	Base        *float64 `yaml:"base"`
	PerDistance *float64 `yaml:"per_distance"`
}

// LoadPolicyBundle reads and parses a YAML policy configuration file.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	var bundle PolicyBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &bundle, nil
}

// Validate checks that every named policy in the bundle is recognized.
func (b *PolicyBundle) Validate() error {
	if !IsValidDispatchPolicy(b.Dispatch.Policy) {
		return fmt.Errorf("policy config: unknown dispatch policy %q", b.Dispatch.Policy)
	}
	if !IsValidBehaviour(b.Behaviour.Default) {
		return fmt.Errorf("policy config: unknown behaviour %q", b.Behaviour.Default)
	}
	for _, rule := range b.Mutation.Rules {
		if !IsValidMutationRule(rule) {
			return fmt.Errorf("policy config: unknown mutation rule %q", rule)
		}
	}
	return nil
}
