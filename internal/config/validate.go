package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}
	if err := c.Placement.validate(); err != nil {
		return fmt.Errorf("placement: %w", err)
	}
	return nil
}

func (s *SRSConfig) validate() error {
	if s.Model != "sm2" && s.Model != "fsrs" {
		return fmt.Errorf("model must be sm2 or fsrs (got %q)", s.Model)
	}
	if s.MaxIntervalDays <= 0 {
		return fmt.Errorf("max_interval_days must be > 0 (got %d)", s.MaxIntervalDays)
	}
	if s.DesiredRetention <= 0 || s.DesiredRetention >= 1 {
		return fmt.Errorf("desired_retention must be in (0, 1) (got %v)", s.DesiredRetention)
	}
	return nil
}

func (p *PlacementConfig) validate() error {
	if p.MinItems <= 0 {
		return fmt.Errorf("min_items must be > 0 (got %d)", p.MinItems)
	}
	if p.MaxItems < p.MinItems {
		return fmt.Errorf("max_items must be >= min_items (got %d < %d)", p.MaxItems, p.MinItems)
	}
	if p.SETarget <= 0 {
		return fmt.Errorf("se_target must be > 0 (got %v)", p.SETarget)
	}
	if p.InitialSE <= 0 {
		return fmt.Errorf("initial_se must be > 0 (got %v)", p.InitialSE)
	}
	return nil
}
