package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYTDLP(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateReaper(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateYTDLP() error {
	if strings.TrimSpace(c.YTDLP.Binary) == "" {
		return errors.New("ytdlp.binary must be set")
	}
	if c.YTDLP.ChunkSize < 1 {
		return errors.New("ytdlp.chunk_size must be at least 1")
	}
	if c.YTDLP.ListingTimeout < 0 {
		return errors.New("ytdlp.listing_timeout must not be negative")
	}
	if c.YTDLP.DownloadTimeout < 0 {
		return errors.New("ytdlp.download_timeout must not be negative")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.MaxListings < 1 {
		return errors.New("workers.max_listings must be at least 1")
	}
	if c.Workers.MaxDownloads < 1 {
		return errors.New("workers.max_downloads must be at least 1")
	}
	if c.Workers.MaxPendingListings < c.Workers.MaxListings {
		return fmt.Errorf("workers.max_pending_listings must be at least workers.max_listings (%d)", c.Workers.MaxListings)
	}
	if c.Workers.MaxPendingDownloads < c.Workers.MaxDownloads {
		return fmt.Errorf("workers.max_pending_downloads must be at least workers.max_downloads (%d)", c.Workers.MaxDownloads)
	}
	return nil
}

func (c *Config) validateReaper() error {
	if c.Reaper.IntervalSeconds < 1 {
		return errors.New("reaper.interval_seconds must be at least 1")
	}
	if c.Reaper.IdleCeilingSeconds < 1 {
		return errors.New("reaper.idle_ceiling_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
