package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEPIC(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.AssetDir, err = expandPath(c.Paths.AssetDir); err != nil {
		return fmt.Errorf("paths.asset_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeEPIC() error {
	c.EPIC.BaseURL = strings.TrimRight(strings.TrimSpace(c.EPIC.BaseURL), "/")
	if c.EPIC.BaseURL == "" {
		c.EPIC.BaseURL = defaultEPICBaseURL
	}
	c.EPIC.ArchiveURL = strings.TrimRight(strings.TrimSpace(c.EPIC.ArchiveURL), "/")
	if c.EPIC.ArchiveURL == "" {
		c.EPIC.ArchiveURL = defaultEPICArchiveURL
	}
	c.EPIC.Collection = strings.ToLower(strings.TrimSpace(c.EPIC.Collection))
	if c.EPIC.Collection == "" {
		c.EPIC.Collection = defaultEPICCollection
	}
	if c.EPIC.RequestTimeout <= 0 {
		c.EPIC.RequestTimeout = defaultEPICTimeout
	}
	if strings.TrimSpace(c.EPIC.CachePath) == "" {
		c.EPIC.CachePath = defaultEPICCachePath
	}
	var err error
	if c.EPIC.CachePath, err = expandPath(c.EPIC.CachePath); err != nil {
		return fmt.Errorf("epic.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeVideo() {
	if c.Video.FrameRate <= 0 {
		c.Video.FrameRate = defaultFrameRate
	}
	if c.Video.CRF <= 0 {
		c.Video.CRF = defaultCRF
	}
	c.Video.Preset = strings.ToLower(strings.TrimSpace(c.Video.Preset))
	if c.Video.Preset == "" {
		c.Video.Preset = defaultPreset
	}
	if strings.TrimSpace(c.Video.FFmpegBinary) == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Video.FFprobeBinary) == "" {
		c.Video.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.StagingMaxAgeHours <= 0 {
		c.Workflow.StagingMaxAgeHours = defaultStagingMaxAgeHours
	}
	if c.Workflow.ShutdownTimeout <= 0 {
		c.Workflow.ShutdownTimeout = defaultShutdownTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
