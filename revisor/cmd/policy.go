package cmd

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/shopspring/decimal"

	"github.com/hwallberg/revisor"
)

// policyConfig is the on-disk shape of a policy file:
//
//	materiality_threshold = 50000.0
//	anomaly_threshold = 0.015
//	control_account = "2440"
type policyConfig struct {
	MaterialityThreshold float64 `toml:"materiality_threshold"`
	AnomalyThreshold     float64 `toml:"anomaly_threshold"`
	ControlAccount       string  `toml:"control_account"`
}

// cliPolicy loads the policy file given with --policy on top of the shipped
// defaults. Unset values keep their defaults.
func cliPolicy() (revisor.Policy, error) {
	pol := revisor.DefaultPolicy()
	if policyFilePath == "" {
		return pol, nil
	}

	data, err := os.ReadFile(policyFilePath)
	if err != nil {
		return pol, err
	}
	var cfg policyConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return pol, fmt.Errorf("unable to parse policy file %s: %w", policyFilePath, err)
	}

	if cfg.MaterialityThreshold > 0 {
		pol.MaterialityThreshold = decimal.NewFromFloat(cfg.MaterialityThreshold)
	}
	if cfg.AnomalyThreshold > 0 {
		pol.AnomalyThreshold = cfg.AnomalyThreshold
	}
	if cfg.ControlAccount != "" {
		pol.ControlAccount = cfg.ControlAccount
	}
	return pol, nil
}
