package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"clipdeck/internal/domain"
)

// Config stores runtime configuration.
type Config struct {
	API     APIConfig
	Upload  UploadConfig
	Audio   AudioConfig
	Session SessionConfig
	Player  PlayerConfig
	Log     LogConfig

	// File is the config file that was read, empty when none was found.
	File string
}

type APIConfig struct {
	BaseURL     string
	UploadPath  string
	ArchivePath string
	Timeout     time.Duration
}

type UploadConfig struct {
	Field        string
	FilenameMode domain.FilenameMode
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type SessionConfig struct {
	ChunkSize   int
	MaxDuration time.Duration
}

type PlayerConfig struct {
	Command          string
	ProgressInterval time.Duration
}

type LogConfig struct {
	Format string
	Level  string
}

var defaults = map[string]any{
	"api.base_url":             "https://api.leoscarin.com",
	"api.upload_path":          "/upload",
	"api.archive_path":         "/archive",
	"api.timeout":              "30s",
	"upload.field":             "audio",
	"upload.filename_mode":     string(domain.FilenameModeTimestamp),
	"audio.recorder_command":   "ffmpeg",
	"audio.input_format":       "pulse",
	"audio.input_device":       "default",
	"audio.sample_rate":        16000,
	"audio.channels":           1,
	"session.chunk_size":       4096,
	"session.max_duration":     "5s",
	"player.command":           "ffplay",
	"player.progress_interval": "250ms",
	"log.format":               "text",
	"log.level":                "info",
}

// Load resolves configuration from an optional YAML file, CLIPDECK_*
// environment variables and defaults. An empty cfgFile searches
// clipdeck.yaml in the user config dir and the working directory.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("clipdeck")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "clipdeck"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CLIPDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	cfg := Config{
		API: APIConfig{
			BaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("api.base_url")), "/"),
			UploadPath:  strings.TrimSpace(v.GetString("api.upload_path")),
			ArchivePath: strings.TrimSpace(v.GetString("api.archive_path")),
			Timeout:     v.GetDuration("api.timeout"),
		},
		Upload: UploadConfig{
			Field:        strings.TrimSpace(v.GetString("upload.field")),
			FilenameMode: domain.FilenameMode(strings.ToLower(strings.TrimSpace(v.GetString("upload.filename_mode")))),
		},
		Audio: AudioConfig{
			RecorderCommand: strings.TrimSpace(v.GetString("audio.recorder_command")),
			InputFormat:     strings.TrimSpace(v.GetString("audio.input_format")),
			InputDevice:     strings.TrimSpace(v.GetString("audio.input_device")),
			SampleRate:      v.GetInt("audio.sample_rate"),
			Channels:        v.GetInt("audio.channels"),
		},
		Session: SessionConfig{
			ChunkSize:   v.GetInt("session.chunk_size"),
			MaxDuration: v.GetDuration("session.max_duration"),
		},
		Player: PlayerConfig{
			Command:          strings.TrimSpace(v.GetString("player.command")),
			ProgressInterval: v.GetDuration("player.progress_interval"),
		},
		Log: LogConfig{
			Format: strings.TrimSpace(v.GetString("log.format")),
			Level:  strings.TrimSpace(v.GetString("log.level")),
		},
		File: v.ConfigFileUsed(),
	}

	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults["api.base_url"].(string)
	}
	cfg.API.UploadPath = ensureLeadingSlash(firstNonEmpty(cfg.API.UploadPath, "/upload"))
	cfg.API.ArchivePath = ensureLeadingSlash(firstNonEmpty(cfg.API.ArchivePath, "/archive"))
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	cfg.Upload.Field = firstNonEmpty(cfg.Upload.Field, "audio")
	if cfg.Upload.FilenameMode != domain.FilenameModeFixed {
		cfg.Upload.FilenameMode = domain.FilenameModeTimestamp
	}
	cfg.Audio.RecorderCommand = firstNonEmpty(cfg.Audio.RecorderCommand, "ffmpeg")
	cfg.Audio.InputFormat = firstNonEmpty(cfg.Audio.InputFormat, "pulse")
	cfg.Audio.InputDevice = firstNonEmpty(cfg.Audio.InputDevice, "default")
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Session.MaxDuration <= 0 {
		cfg.Session.MaxDuration = 5 * time.Second
	}
	cfg.Player.Command = firstNonEmpty(cfg.Player.Command, "ffplay")
	if cfg.Player.ProgressInterval <= 0 {
		cfg.Player.ProgressInterval = 250 * time.Millisecond
	}
	cfg.Log.Format = firstNonEmpty(cfg.Log.Format, "text")
	cfg.Log.Level = firstNonEmpty(cfg.Log.Level, "info")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
