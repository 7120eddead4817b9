package configuration

import (
	"errors"
	"fmt"
	"log/slog"
	"satstream/internal/configuration/properties"
	"satstream/internal/configuration/util"

	"gopkg.in/yaml.v3"
)

const DefaultDir = "internal/static"

var ErrInvalidConfig = errors.New("invalid configuration")

func Load() (*properties.Config, error) {
	return LoadFrom(DefaultDir)
}

// LoadFrom reads application.yml from dir and overlays the profile file it
// names, application-<profile>.yml.
func LoadFrom(dir string) (*properties.Config, error) {
	cfg, err := loadBaseConfig(dir)
	if err != nil {
		return nil, err
	}

	if cfg.Application.Profile != "" {
		if err := loadProfileConfig(dir, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadBaseConfig(dir string) (*properties.Config, error) {
	baseConfig, err := util.LoadAndExpandYaml(dir, "application")
	if err != nil {
		slog.Error("error loading base config", "error", err)
		return nil, err
	}

	cfg := properties.Config{}
	if err := yaml.Unmarshal([]byte(baseConfig), &cfg); err != nil {
		slog.Error("error parsing base config", "error", err)
		return nil, fmt.Errorf("parse application.yml: %w", err)
	}

	return &cfg, nil
}

func loadProfileConfig(dir string, cfg *properties.Config) error {
	name := "application-" + cfg.Application.Profile
	profileConfig, err := util.LoadAndExpandYaml(dir, name)
	if err != nil {
		slog.Error("error loading profile config", "profile", cfg.Application.Profile, "error", err)
		return err
	}

	if err := yaml.Unmarshal([]byte(profileConfig), cfg); err != nil {
		slog.Error("error parsing profile config", "profile", cfg.Application.Profile, "error", err)
		return fmt.Errorf("parse %s.yml: %w", name, err)
	}

	return nil
}

func applyDefaults(cfg *properties.Config) {
	if cfg.Application.LogLevel == "" {
		cfg.Application.LogLevel = "info"
	}
	if cfg.Transport.Network == "" {
		cfg.Transport.Network = "tcp"
	}
	if cfg.Processing.HeatmapSize == 0 {
		cfg.Processing.HeatmapSize = 100
	}
	if cfg.Processing.WeightFactor == 0 {
		cfg.Processing.WeightFactor = 1
	}
}

func validate(cfg *properties.Config) error {
	var errs []error
	if cfg.Transport.Port == "" {
		errs = append(errs, errors.New("transport.port is required"))
	}
	if cfg.Coordinator.SnapCount < 0 {
		errs = append(errs, fmt.Errorf("coordinator.snap-count %d is negative", cfg.Coordinator.SnapCount))
	}
	if cfg.Coordinator.PlaybackBatch < 0 {
		errs = append(errs, fmt.Errorf("coordinator.playback-batch %d is negative", cfg.Coordinator.PlaybackBatch))
	}
	if cfg.Processing.HeatmapSize < 0 {
		errs = append(errs, fmt.Errorf("processing.heatmap-size %d is negative", cfg.Processing.HeatmapSize))
	}
	if cfg.Processing.WeightFactor < 0 {
		errs = append(errs, fmt.Errorf("processing.weight-factor %v is negative", cfg.Processing.WeightFactor))
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Address == "" {
		errs = append(errs, errors.New("metrics.address is required when metrics are enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
