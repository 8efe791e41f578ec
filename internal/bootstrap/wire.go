package bootstrap

import (
	"io"

	"clipdeck/internal/audio"
	"clipdeck/internal/config"
	"clipdeck/internal/logging"
	"clipdeck/internal/playback"
	"clipdeck/internal/ports"
	"clipdeck/internal/remote"
	"clipdeck/internal/usecase"
)

// Options selects the config file and where logs go.
type Options struct {
	ConfigFile string
	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// Services is the assembled runtime graph.
type Services struct {
	Config     config.Config
	Controller *usecase.SessionController
	Archive    *usecase.ArchiveService
	Deck       *playback.Deck
	Player     *audio.FFPlayPlayer
}

// Build wires all backend dependencies for the current runtime.
func Build(opts Options, eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return Services{}, err
	}
	logging.Init(cfg.Log.Format, cfg.Log.Level, opts.LogOutput)

	log := logging.L("bootstrap")
	if cfg.File != "" {
		log.Info("loaded config", "file", cfg.File)
	}

	client := remote.NewClient(remote.Options{
		BaseURL:     cfg.API.BaseURL,
		UploadPath:  cfg.API.UploadPath,
		ArchivePath: cfg.API.ArchivePath,
		Field:       cfg.Upload.Field,
		Timeout:     cfg.API.Timeout,
	})

	player := audio.NewFFPlayPlayer(cfg.Player.Command, client.HTTPClient())
	deck := playback.NewDeck(player, eventSink, cfg.Player.ProgressInterval)
	archive := usecase.NewArchiveService(client, deck, eventSink)

	controller := usecase.NewSessionController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		client,
		archive,
		eventSink,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			ChunkSize:    cfg.Session.ChunkSize,
			MaxDuration:  cfg.Session.MaxDuration,
			FilenameMode: cfg.Upload.FilenameMode,
		},
	)

	log.Debug("services ready", "api", cfg.API.BaseURL, "maxDuration", cfg.Session.MaxDuration)
	return Services{
		Config:     cfg,
		Controller: controller,
		Archive:    archive,
		Deck:       deck,
		Player:     player,
	}, nil
}
