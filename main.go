package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"clipdeck/internal/bootstrap"
	"clipdeck/internal/ui/tui"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "0.1.0"
	cfgFile string
	preview bool
)

var rootCmd = &cobra.Command{
	Use:   "clipdeck",
	Short: "Record short clips and browse the clip archive",
	Long:  `clipdeck records short microphone clips, uploads them to the archive service and plays archived clips back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGUI()
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record one clip and upload it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd.Context(), os.Stdin, cmd.OutOrStdout(), preview)
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "List archived clips",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runArchive(cmd.Context(), cmd.OutOrStdout())
	},
}

var playCmd = &cobra.Command{
	Use:   "play <n>",
	Short: "Play archived clip number n",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clipdeck v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is clipdeck.yaml in the user config dir)")
	recordCmd.Flags().BoolVar(&preview, "preview", false, "play the clip locally after recording")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func runGUI() error {
	app := NewApp(cfgFile)
	return wails.Run(&options.App{
		Title:     "clipdeck",
		Width:     720,
		Height:    640,
		MinWidth:  420,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
}

func runTUI(ctx context.Context) error {
	logFile, err := os.CreateTemp("", "clipdeck-tui-*.log")
	if err != nil {
		return err
	}
	defer logFile.Close()

	sink := tui.NewSink()
	services, err := bootstrap.Build(bootstrap.Options{ConfigFile: cfgFile, LogOutput: logFile}, sink)
	if err != nil {
		return err
	}

	model := tui.NewModel(ctx, services.Controller, services.Archive, services.Deck)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	sink.Attach(program)

	_, runErr := program.Run()

	sink.Attach(nil)
	_ = services.Controller.Abort()
	services.Deck.Stop()
	return runErr
}
