package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipdeck/internal/domain"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://api.leoscarin.com" || cfg.API.UploadPath != "/upload" || cfg.API.ArchivePath != "/archive" {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Upload.Field != "audio" || cfg.Upload.FilenameMode != domain.FilenameModeTimestamp {
		t.Fatalf("unexpected upload config: %+v", cfg.Upload)
	}
	if cfg.Session.MaxDuration != 5*time.Second || cfg.Session.ChunkSize != 4096 {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Player.Command != "ffplay" || cfg.Player.ProgressInterval != 250*time.Millisecond {
		t.Fatalf("unexpected player config: %+v", cfg.Player)
	}
	if cfg.File != "" {
		t.Fatalf("expected no config file, got %q", cfg.File)
	}
}

func TestLoadRespectsEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CLIPDECK_API_BASE_URL", "http://localhost:9000/")
	t.Setenv("CLIPDECK_API_UPLOAD_PATH", "v1/upload")
	t.Setenv("CLIPDECK_API_TIMEOUT", "3s")
	t.Setenv("CLIPDECK_UPLOAD_FIELD", "clip")
	t.Setenv("CLIPDECK_UPLOAD_FILENAME_MODE", "FIXED")
	t.Setenv("CLIPDECK_AUDIO_RECORDER_COMMAND", "my-ffmpeg")
	t.Setenv("CLIPDECK_AUDIO_INPUT_FORMAT", "alsa")
	t.Setenv("CLIPDECK_AUDIO_INPUT_DEVICE", "hw:1")
	t.Setenv("CLIPDECK_AUDIO_SAMPLE_RATE", "44100")
	t.Setenv("CLIPDECK_AUDIO_CHANNELS", "2")
	t.Setenv("CLIPDECK_SESSION_CHUNK_SIZE", "512")
	t.Setenv("CLIPDECK_SESSION_MAX_DURATION", "10s")
	t.Setenv("CLIPDECK_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:9000" || cfg.API.UploadPath != "/v1/upload" || cfg.API.Timeout != 3*time.Second {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Upload.Field != "clip" || cfg.Upload.FilenameMode != domain.FilenameModeFixed {
		t.Fatalf("unexpected upload config: %+v", cfg.Upload)
	}
	if cfg.Audio.RecorderCommand != "my-ffmpeg" || cfg.Audio.InputFormat != "alsa" || cfg.Audio.InputDevice != "hw:1" {
		t.Fatalf("unexpected audio config: %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Channels != 2 {
		t.Fatalf("unexpected sample/channels: %+v", cfg.Audio)
	}
	if cfg.Session.ChunkSize != 512 || cfg.Session.MaxDuration != 10*time.Second {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "clipdeck.yaml")
	contents := "api:\n  base_url: https://archive.example.com\nsession:\n  max_duration: 2s\nplayer:\n  command: mpv\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://archive.example.com" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.Session.MaxDuration != 2*time.Second || cfg.Player.Command != "mpv" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.File != path {
		t.Fatalf("expected config file %q, got %q", path, cfg.File)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	home := isolate(t)

	if _, err := Load(filepath.Join(home, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadInvalidValuesFallback(t *testing.T) {
	isolate(t)
	t.Setenv("CLIPDECK_AUDIO_SAMPLE_RATE", "bad")
	t.Setenv("CLIPDECK_AUDIO_CHANNELS", "-1")
	t.Setenv("CLIPDECK_SESSION_CHUNK_SIZE", "5")
	t.Setenv("CLIPDECK_SESSION_MAX_DURATION", "bad")
	t.Setenv("CLIPDECK_PLAYER_PROGRESS_INTERVAL", "-1s")
	t.Setenv("CLIPDECK_UPLOAD_FILENAME_MODE", "random")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("expected default audio format, got %+v", cfg.Audio)
	}
	if cfg.Session.ChunkSize != 4096 {
		t.Fatalf("expected chunk size fallback, got %d", cfg.Session.ChunkSize)
	}
	if cfg.Session.MaxDuration != 5*time.Second {
		t.Fatalf("expected default max duration, got %s", cfg.Session.MaxDuration)
	}
	if cfg.Player.ProgressInterval != 250*time.Millisecond {
		t.Fatalf("expected default progress interval, got %s", cfg.Player.ProgressInterval)
	}
	if cfg.Upload.FilenameMode != domain.FilenameModeTimestamp {
		t.Fatalf("expected timestamp filename mode, got %q", cfg.Upload.FilenameMode)
	}
}
