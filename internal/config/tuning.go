package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/eflow.defaults.json"

// Distance calculator names accepted by match_distance.
const (
	DistanceEtaPhiSquare             = "eta_phi_sq"
	DistanceEtaPhiSquareSignificance = "significance"
)

// ConeBin parameterises the recovery cone radius for clusters with
// |eta| <= EtaMax: R(E) = Intercept + Slope*ln(E/GeV).
type ConeBin struct {
	EtaMax    float64 `json:"eta_max"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// EFlowConfig represents the root configuration for the energy-flow
// reconstruction. Every field is optional; the Get* methods supply the
// defaults for fields omitted from the JSON.
type EFlowConfig struct {
	// Primary track-cluster matching
	MatchDistance   *string  `json:"match_distance,omitempty"`
	MatchCut        *float64 `json:"match_cut,omitempty"`
	MinClusterWidth *float64 `json:"min_cluster_width,omitempty"`

	// Shower simulation
	IntegrationCone *float64 `json:"integration_cone,omitempty"`

	// Split-shower recovery cone
	RecoveryConeBins      []ConeBin `json:"recovery_cone_bins,omitempty"`
	RecoveryConeMin       *float64  `json:"recovery_cone_min,omitempty"`
	RecoveryConeMax       *float64  `json:"recovery_cone_max,omitempty"`
	RecoverIsolatedTracks *bool     `json:"recover_isolated_tracks,omitempty"`

	// Subtraction
	AnnihilationSigma *float64 `json:"annihilation_sigma,omitempty"`
	EOverPFailSigma   *float64 `json:"e_over_p_fail_sigma,omitempty"`

	// Dense environment policy
	DenseCone          *float64 `json:"dense_cone,omitempty"`
	DensePullIntercept *float64 `json:"dense_pull_intercept,omitempty"`
	DensePullSlope     *float64 `json:"dense_pull_slope,omitempty"`

	// Output
	LinkChargedClusters *bool `json:"link_charged_clusters,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// EmptyEFlowConfig returns an EFlowConfig with all fields set to nil.
// Use LoadEFlowConfig to load actual values from the defaults file.
func EmptyEFlowConfig() *EFlowConfig {
	return &EFlowConfig{}
}

// LoadEFlowConfig loads an EFlowConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadEFlowConfig(path string) (*EFlowConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyEFlowConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *EFlowConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // one level down
		"../../" + DefaultConfigPath,    // from internal/config/ or cmd/eflowrec/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadEFlowConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *EFlowConfig) Validate() error {
	if c.MatchDistance != nil {
		switch *c.MatchDistance {
		case DistanceEtaPhiSquare, DistanceEtaPhiSquareSignificance:
		default:
			return fmt.Errorf("match_distance must be %q or %q, got %q",
				DistanceEtaPhiSquare, DistanceEtaPhiSquareSignificance, *c.MatchDistance)
		}
	}

	positive := []struct {
		name string
		v    *float64
	}{
		{"match_cut", c.MatchCut},
		{"min_cluster_width", c.MinClusterWidth},
		{"integration_cone", c.IntegrationCone},
		{"recovery_cone_max", c.RecoveryConeMax},
	}
	for _, p := range positive {
		if p.v != nil && *p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", p.name, *p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"recovery_cone_min", c.RecoveryConeMin},
		{"annihilation_sigma", c.AnnihilationSigma},
		{"e_over_p_fail_sigma", c.EOverPFailSigma},
		{"dense_cone", c.DenseCone},
		{"dense_pull_slope", c.DensePullSlope},
	}
	for _, p := range nonNegative {
		if p.v != nil && *p.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", p.name, *p.v)
		}
	}

	if c.GetRecoveryConeMin() > c.GetRecoveryConeMax() {
		return fmt.Errorf("recovery_cone_min (%f) exceeds recovery_cone_max (%f)",
			c.GetRecoveryConeMin(), c.GetRecoveryConeMax())
	}

	prev := -1.0
	for i, b := range c.RecoveryConeBins {
		if b.EtaMax <= prev {
			return fmt.Errorf("recovery_cone_bins[%d].eta_max must be increasing, got %f after %f", i, b.EtaMax, prev)
		}
		prev = b.EtaMax
	}

	return nil
}

// GetMatchDistance returns the match_distance value or the default.
func (c *EFlowConfig) GetMatchDistance() string {
	if c.MatchDistance == nil {
		return DistanceEtaPhiSquareSignificance
	}
	return *c.MatchDistance
}

// GetMatchCut returns the match_cut value or the default (1.64²).
func (c *EFlowConfig) GetMatchCut() float64 {
	if c.MatchCut == nil {
		return 1.64 * 1.64
	}
	return *c.MatchCut
}

// GetMinClusterWidth returns the min_cluster_width value or the default.
func (c *EFlowConfig) GetMinClusterWidth() float64 {
	if c.MinClusterWidth == nil {
		return 0.0025
	}
	return *c.MinClusterWidth
}

// GetIntegrationCone returns the integration_cone value or the default.
func (c *EFlowConfig) GetIntegrationCone() float64 {
	if c.IntegrationCone == nil {
		return 0.15
	}
	return *c.IntegrationCone
}

// GetRecoveryConeBins returns the recovery_cone_bins value or the default
// barrel/endcap/forward parameterisation.
func (c *EFlowConfig) GetRecoveryConeBins() []ConeBin {
	if len(c.RecoveryConeBins) == 0 {
		return []ConeBin{
			{EtaMax: 1.0, Intercept: 0.20, Slope: -0.020},
			{EtaMax: 2.0, Intercept: 0.22, Slope: -0.025},
			{EtaMax: 2.5, Intercept: 0.24, Slope: -0.030},
		}
	}
	return c.RecoveryConeBins
}

// GetRecoveryConeMin returns the recovery_cone_min value or the default.
func (c *EFlowConfig) GetRecoveryConeMin() float64 {
	if c.RecoveryConeMin == nil {
		return 0.05
	}
	return *c.RecoveryConeMin
}

// GetRecoveryConeMax returns the recovery_cone_max value or the default.
func (c *EFlowConfig) GetRecoveryConeMax() float64 {
	if c.RecoveryConeMax == nil {
		return 0.25
	}
	return *c.RecoveryConeMax
}

// GetRecoverIsolatedTracks returns the recover_isolated_tracks value or the default.
func (c *EFlowConfig) GetRecoverIsolatedTracks() bool {
	if c.RecoverIsolatedTracks == nil {
		return false
	}
	return *c.RecoverIsolatedTracks
}

// GetAnnihilationSigma returns the annihilation_sigma value or the default.
func (c *EFlowConfig) GetAnnihilationSigma() float64 {
	if c.AnnihilationSigma == nil {
		return 1.5
	}
	return *c.AnnihilationSigma
}

// GetEOverPFailSigma returns the e_over_p_fail_sigma value or the default.
func (c *EFlowConfig) GetEOverPFailSigma() float64 {
	if c.EOverPFailSigma == nil {
		return 1.0
	}
	return *c.EOverPFailSigma
}

// GetDenseCone returns the dense_cone value or the default. Zero disables
// the dense-environment check.
func (c *EFlowConfig) GetDenseCone() float64 {
	if c.DenseCone == nil {
		return 0.2
	}
	return *c.DenseCone
}

// GetDensePullIntercept returns the dense_pull_intercept value or the default.
func (c *EFlowConfig) GetDensePullIntercept() float64 {
	if c.DensePullIntercept == nil {
		return 33.2
	}
	return *c.DensePullIntercept
}

// GetDensePullSlope returns the dense_pull_slope value or the default.
func (c *EFlowConfig) GetDensePullSlope() float64 {
	if c.DensePullSlope == nil {
		return 8.0
	}
	return *c.DensePullSlope
}

// GetLinkChargedClusters returns the link_charged_clusters value or the default.
func (c *EFlowConfig) GetLinkChargedClusters() bool {
	if c.LinkChargedClusters == nil {
		return true
	}
	return *c.LinkChargedClusters
}
