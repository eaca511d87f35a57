package config

const (
	defaultTempDir        = "~/.cache/hamonix/work"
	defaultLogDir         = "~/.local/share/hamonix/logs"
	defaultHistoryDB      = "~/.local/share/hamonix/history.db"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultMaxFileSizeMB  = 500
	defaultTimeoutSeconds = 600
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	defaultMinBitrateKbps    = 64
	defaultMaxBitrateKbps    = 320
	defaultMinTargetLUFS     = -50.0
	defaultMaxTargetLUFS     = 0.0
	defaultMinSpeed          = 0.5
	defaultMaxSpeed          = 2.0
	defaultMinSilenceDB      = -90.0
	defaultMaxSilenceDB      = 0.0
	defaultMinPitchSemitones = -24
	defaultMaxPitchSemitones = 24
	defaultStderrExcerpt     = 2048

	defaultMusicTargetLUFS   = -14.0
	defaultPodcastTargetLUFS = -16.0
	defaultVoiceTargetLUFS   = -18.0
	defaultCeilingDBFS       = -1.0
	defaultCompressThreshold = -18.0
	defaultCompressRatio     = 3.0
	defaultCompressAttackMs  = 20.0
	defaultCompressReleaseMs = 250.0

	defaultTrimThresholdDB  = -50.0
	defaultTrimMinSilenceMs = 500
	defaultTrimPaddingMs    = 0
)

func defaultSampleRates() []int {
	return []int{8000, 11025, 16000, 22050, 32000, 44100, 48000, 88200, 96000, 192000}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:   defaultTempDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Engine: Engine{
			MaxFileSizeMB:  defaultMaxFileSizeMB,
			TimeoutSeconds: defaultTimeoutSeconds,
			MaxWorkers:     0, // 0 = min(file count, GOMAXPROCS)
		},
		Limits: Limits{
			MinBitrateKbps:     defaultMinBitrateKbps,
			MaxBitrateKbps:     defaultMaxBitrateKbps,
			SampleRates:        defaultSampleRates(),
			MinTargetLUFS:      defaultMinTargetLUFS,
			MaxTargetLUFS:      defaultMaxTargetLUFS,
			MinSpeed:           defaultMinSpeed,
			MaxSpeed:           defaultMaxSpeed,
			MinSilenceDB:       defaultMinSilenceDB,
			MaxSilenceDB:       defaultMaxSilenceDB,
			MinPitchSemitones:  defaultMinPitchSemitones,
			MaxPitchSemitones:  defaultMaxPitchSemitones,
			StderrExcerptBytes: defaultStderrExcerpt,
		},
		Mastering: Mastering{
			MusicTargetLUFS:   defaultMusicTargetLUFS,
			PodcastTargetLUFS: defaultPodcastTargetLUFS,
			VoiceTargetLUFS:   defaultVoiceTargetLUFS,
			CeilingDBFS:       defaultCeilingDBFS,
			CompressThreshold: defaultCompressThreshold,
			CompressRatio:     defaultCompressRatio,
			CompressAttackMs:  defaultCompressAttackMs,
			CompressReleaseMs: defaultCompressReleaseMs,
		},
		Trim: Trim{
			ThresholdDB:  defaultTrimThresholdDB,
			MinSilenceMs: defaultTrimMinSilenceMs,
			PaddingMs:    defaultTrimPaddingMs,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
