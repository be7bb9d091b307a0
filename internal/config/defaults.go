package config

const (
	defaultDataDir             = "~/.local/share/bobbin"
	defaultDownloadDir         = "~/downloads/bobbin"
	defaultLogDir              = "~/.local/share/bobbin/logs"
	defaultAPIBind             = "127.0.0.1:7587"
	defaultYTDLPBinary         = "yt-dlp"
	defaultChunkSize           = 10
	defaultListingTimeout      = 300
	defaultDownloadTimeout     = 0
	defaultMaxListings         = 2
	defaultMaxDownloads        = 3
	defaultMaxPendingListings  = 20
	defaultMaxPendingDownloads = 200
	defaultReaperInterval      = 30
	defaultIdleCeiling         = 600
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultNotifyTimeout       = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		YTDLP: YTDLP{
			Binary:          defaultYTDLPBinary,
			ChunkSize:       defaultChunkSize,
			ListingTimeout:  defaultListingTimeout,
			DownloadTimeout: defaultDownloadTimeout,
			EmbedSubtitles:  true,
			EmbedThumbnail:  true,
		},
		Workers: Workers{
			MaxListings:         defaultMaxListings,
			MaxDownloads:        defaultMaxDownloads,
			MaxPendingListings:  defaultMaxPendingListings,
			MaxPendingDownloads: defaultMaxPendingDownloads,
		},
		Reaper: Reaper{
			IntervalSeconds:    defaultReaperInterval,
			IdleCeilingSeconds: defaultIdleCeiling,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
	}
}
