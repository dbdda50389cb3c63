package eflow

import (
	"fmt"

	"github.com/banshee-data/eflowrec/internal/config"
)

// Config holds the reconstruction parameters.
type Config struct {
	MatchDistance   string  // distance calculator name for the primary match
	MatchCut        float64 // accept matches with distance strictly below this
	MinClusterWidth float64 // floor on cluster eta/phi widths for significance
	IntegrationCone float64 // cone used to integrate layer energy around tracks

	RecoveryCone          ConeMatcher
	RecoverIsolatedTracks bool

	AnnihilationSigma float64 // annihilate when residual <= this × sigma
	EOverPFailSigma   float64 // first pass defers tracks below expected - this × sigma

	Dense DensePolicy

	LinkChargedClusters bool // charged PFOs carry their cluster IDs
}

// DefaultConfig returns configuration loaded from the canonical defaults
// file (config/eflow.defaults.json).
// Panics if the file cannot be found; intended for tests and binaries
// that have already validated config availability.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded EFlowConfig.
func ConfigFromTuning(cfg *config.EFlowConfig) Config {
	return Config{
		MatchDistance:   cfg.GetMatchDistance(),
		MatchCut:        cfg.GetMatchCut(),
		MinClusterWidth: cfg.GetMinClusterWidth(),
		IntegrationCone: cfg.GetIntegrationCone(),
		RecoveryCone: ConeMatcher{
			Bins: cfg.GetRecoveryConeBins(),
			Min:  cfg.GetRecoveryConeMin(),
			Max:  cfg.GetRecoveryConeMax(),
		},
		RecoverIsolatedTracks: cfg.GetRecoverIsolatedTracks(),
		AnnihilationSigma:     cfg.GetAnnihilationSigma(),
		EOverPFailSigma:       cfg.GetEOverPFailSigma(),
		Dense: DensePolicy{
			Cone:      cfg.GetDenseCone(),
			Intercept: cfg.GetDensePullIntercept(),
			Slope:     cfg.GetDensePullSlope(),
		},
		LinkChargedClusters: cfg.GetLinkChargedClusters(),
	}
}

// Validate checks parameters that would make the algorithm misbehave.
func (c Config) Validate() error {
	if c.MatchCut <= 0 {
		return fmt.Errorf("match cut must be positive, got %f", c.MatchCut)
	}
	if c.IntegrationCone <= 0 {
		return fmt.Errorf("integration cone must be positive, got %f", c.IntegrationCone)
	}
	if c.RecoveryCone.Max <= 0 || c.RecoveryCone.Min > c.RecoveryCone.Max {
		return fmt.Errorf("recovery cone limits [%f, %f] are invalid", c.RecoveryCone.Min, c.RecoveryCone.Max)
	}
	if c.AnnihilationSigma < 0 || c.EOverPFailSigma < 0 {
		return fmt.Errorf("sigma multiples must be non-negative")
	}
	if c.Dense.Cone < 0 {
		return fmt.Errorf("dense cone must be non-negative, got %f", c.Dense.Cone)
	}
	if _, err := NewDistanceCalculator(c.MatchDistance, c.MinClusterWidth); err != nil {
		return err
	}
	return nil
}
