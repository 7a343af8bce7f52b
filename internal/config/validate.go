package config

import (
	"errors"
	"fmt"
)

var validCollections = map[string]struct{}{
	"natural":  {},
	"enhanced": {},
}

var validPresets = map[string]struct{}{
	"ultrafast": {},
	"superfast": {},
	"veryfast":  {},
	"faster":    {},
	"fast":      {},
	"medium":    {},
	"slow":      {},
	"slower":    {},
	"veryslow":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEPIC(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.AssetDir == "" {
		return errors.New("paths.asset_dir must be set")
	}
	if c.Paths.StagingDir == c.Paths.AssetDir {
		return errors.New("paths.staging_dir and paths.asset_dir must differ")
	}
	return nil
}

func (c *Config) validateEPIC() error {
	if _, ok := validCollections[c.EPIC.Collection]; !ok {
		return fmt.Errorf("epic.collection must be %q or %q, got %q", "natural", "enhanced", c.EPIC.Collection)
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FrameRate < 1 || c.Video.FrameRate > 120 {
		return fmt.Errorf("video.frame_rate must be between 1 and 120, got %d", c.Video.FrameRate)
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return fmt.Errorf("video.crf must be between 0 and 51, got %d", c.Video.CRF)
	}
	if _, ok := validPresets[c.Video.Preset]; !ok {
		return fmt.Errorf("video.preset: unknown x264 preset %q", c.Video.Preset)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "console", "json", c.Logging.Format)
	}
}
