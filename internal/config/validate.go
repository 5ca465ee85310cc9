package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownProviders = map[string]struct{}{
	"steamgriddb": {},
	"igdb":        {},
	"thegamesdb":  {},
	"libretro":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateRun(); err != nil {
		return err
	}
	if err := c.validatePlatforms(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateTuning(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "jpg", "jpeg", "png":
	default:
		return fmt.Errorf("output.format must be jpg or png, got %q", c.Output.Format)
	}
	if c.Output.Size < 64 || c.Output.Size > 4096 {
		return fmt.Errorf("output.size %d out of range [64, 4096]", c.Output.Size)
	}
	return nil
}

func (c *Config) validateRun() error {
	switch c.Run.Mode {
	case "parallel", "sequential":
	default:
		return fmt.Errorf("run.mode must be parallel or sequential, got %q", c.Run.Mode)
	}
	if c.Run.Workers > 64 {
		return fmt.Errorf("run.workers %d is unreasonably high", c.Run.Workers)
	}
	return nil
}

func (c *Config) validatePlatforms() error {
	seen := make(map[string]struct{}, len(c.Platforms))
	for i, p := range c.Platforms {
		if strings.TrimSpace(p.Key) == "" {
			return fmt.Errorf("platforms[%d].key must be set", i)
		}
		if _, dup := seen[p.Key]; dup {
			return fmt.Errorf("duplicate platform key %q", p.Key)
		}
		seen[p.Key] = struct{}{}
		if strings.TrimSpace(p.Folder) == "" {
			return fmt.Errorf("platforms[%d] (%s): folder must be set", i, p.Key)
		}
	}
	return nil
}

func (c *Config) validateProviders() error {
	if len(c.Providers.Order) == 0 {
		return errors.New("providers.order must name at least one provider")
	}
	seen := make(map[string]struct{}, len(c.Providers.Order))
	for _, name := range c.Providers.Order {
		if _, ok := knownProviders[name]; !ok {
			return fmt.Errorf("unknown provider %q in providers.order", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("provider %q listed twice in providers.order", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (c *Config) validateTuning() error {
	if c.AutoCenter.Span >= 0.5 {
		return errors.New("autocenter.span must be below 0.5")
	}
	if c.AutoCenter.Tolerance >= 0.5 {
		return errors.New("autocenter.tolerance must be below 0.5")
	}
	if c.Logo.MinContentRatio >= 1 {
		return errors.New("logo.min_content_ratio must be below 1")
	}
	if c.Logo.MaxCropRatio > 1 {
		return errors.New("logo.max_crop_ratio must be at most 1")
	}
	if c.Fallback.Enabled && strings.TrimSpace(c.Fallback.IconPath) == "" {
		return errors.New("fallback.icon_path must be set when fallback is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
