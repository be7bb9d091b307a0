package config

import "strings"

// normalize expands path fields and clamps numeric settings to usable values.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.YTDLP.Binary = strings.TrimSpace(c.YTDLP.Binary)
	if c.YTDLP.Binary == "" {
		c.YTDLP.Binary = defaultYTDLPBinary
	}
	if c.YTDLP.ChunkSize <= 0 {
		c.YTDLP.ChunkSize = defaultChunkSize
	}
	if c.Workers.MaxListings <= 0 {
		c.Workers.MaxListings = defaultMaxListings
	}
	if c.Workers.MaxDownloads <= 0 {
		c.Workers.MaxDownloads = defaultMaxDownloads
	}
	if c.Workers.MaxPendingListings <= 0 {
		c.Workers.MaxPendingListings = defaultMaxPendingListings
	}
	if c.Workers.MaxPendingDownloads <= 0 {
		c.Workers.MaxPendingDownloads = defaultMaxPendingDownloads
	}
	if c.Reaper.IntervalSeconds <= 0 {
		c.Reaper.IntervalSeconds = defaultReaperInterval
	}
	if c.Reaper.IdleCeilingSeconds <= 0 {
		c.Reaper.IdleCeilingSeconds = defaultIdleCeiling
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	return nil
}
