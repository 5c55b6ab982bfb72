// Package main provides the entry point for the speakdoc CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/speakdoc/speakdoc/internal/config"
	"github.com/speakdoc/speakdoc/internal/document"
	"github.com/speakdoc/speakdoc/internal/speech"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string

	// Input selectors, mutually exclusive.
	inputFile  string
	inputText  string
	inputURL   string
	batchGlobs []string
	listVoices bool

	// Speech modifiers.
	voiceIndex int
	rateFlag   float64
	volumeFlag float64
	chunkSize  int
	pauseSecs  float64
	noWait     bool
	saveAudio  string
	engineName string

	// Settings profiles.
	saveConfigName string
	loadConfigName string

	quiet   bool
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "speakdoc",
		Short: "Read documents and web pages aloud",
		Long: "\nspeakdoc extracts text from documents (txt, pdf, docx, pptx) and web" +
			"\npages and reads it aloud, or renders it to an audio file.",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if quiet && verbose {
		return errors.New("cannot use both --quiet and --verbose")
	}
	setupLog()

	// Config values fill in flags the user didn't set.
	if !cmd.Flags().Changed("engine") {
		engineName = viper.GetString("engine")
	}
	if !cmd.Flags().Changed("rate") {
		rateFlag = viper.GetFloat64("rate")
	}
	if !cmd.Flags().Changed("volume") {
		volumeFlag = viper.GetFloat64("volume")
	}
	if !cmd.Flags().Changed("chunk-size") {
		chunkSize = viper.GetInt("chunk_size")
	}
	if !cmd.Flags().Changed("pause") {
		pauseSecs = viper.GetFloat64("pause_between_chunks")
	}
	return nil
}

// settingsFromFlags folds profile settings and flag overrides into one
// partial settings value. Flags the user set win over the loaded profile.
func settingsFromFlags(cmd *cobra.Command) (speech.Settings, error) {
	var s speech.Settings

	if loadConfigName != "" {
		store, err := config.DefaultStore()
		if err != nil {
			return s, err
		}
		m, err := store.Load(loadConfigName)
		if err != nil {
			return s, err
		}
		s = speech.SettingsFromMap(m)
		log.Info("settings loaded", "profile", loadConfigName)
	}

	if cmd.Flags().Changed("voice") {
		s.Voice = &voiceIndex
	}
	if cmd.Flags().Changed("rate") || s.Rate == nil {
		s.Rate = &rateFlag
	}
	if cmd.Flags().Changed("volume") || s.Volume == nil {
		s.Volume = &volumeFlag
	}
	if cmd.Flags().Changed("chunk-size") || s.ChunkSize == nil {
		s.ChunkSize = &chunkSize
	}
	if cmd.Flags().Changed("pause") || s.Pause == nil {
		s.Pause = &pauseSecs
	}
	return s, nil
}

func execute(cmd *cobra.Command, _ []string) error {
	settings, err := settingsFromFlags(cmd)
	if err != nil {
		return err
	}

	if saveConfigName != "" {
		store, err := config.DefaultStore()
		if err != nil {
			return err
		}
		merged := config.DefaultSettings()
		for k, v := range settings.Map() {
			merged[k] = v
		}
		if err := store.Save(saveConfigName, merged); err != nil {
			return err
		}
		if inputFile == "" && inputText == "" && inputURL == "" && len(batchGlobs) == 0 && !listVoices {
			return nil
		}
	}

	engine, err := speech.New(engineName, viper.GetString("google_credentials"))
	if err != nil {
		return err
	}
	defer engine.Close() //nolint:errcheck

	// Setter failures keep the engine's previous values in force.
	if err := speech.Apply(engine, settings); err != nil {
		log.Warn("settings not fully applied", "err", err)
	}

	if listVoices {
		return printVoices(engine)
	}

	ctx := cmd.Context()
	switch {
	case inputText != "":
		return speakText(ctx, engine, settings, inputText, "speech")
	case inputFile != "":
		return speakFile(ctx, engine, settings, inputFile)
	case inputURL != "":
		addr := inputURL
		if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
			addr = "https://" + addr
		}
		text, err := document.ReadURL(ctx, addr)
		if err != nil {
			return err
		}
		return speakText(ctx, engine, settings, text, "webpage")
	case len(batchGlobs) > 0:
		return speakBatch(ctx, engine, settings, batchGlobs)
	default:
		return errors.New("nothing to do: pass --file, --text, --url, --batch, or --list-voices")
	}
}

func speakFile(ctx context.Context, engine speech.Engine, settings speech.Settings, path string) error {
	expanded, err := homedir.Expand(path)
	if err == nil {
		path = expanded
	}
	text, err := document.Read(path)
	if err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return speakText(ctx, engine, settings, text, stem)
}

// speakText routes extracted text to either the speakers or an audio file.
// stem names the output file when --save-audio is "auto".
func speakText(ctx context.Context, engine speech.Engine, settings speech.Settings, text, stem string) error {
	if saveAudio != "" {
		path := saveAudio
		if path == "auto" {
			path = stem + ".wav"
		}
		return engine.SaveToFile(ctx, text, path)
	}

	if noWait {
		return engine.Speak(ctx, text, false)
	}

	size := speech.DefaultChunkSize
	if settings.ChunkSize != nil {
		size = *settings.ChunkSize
	}
	return speech.SpeakInChunks(ctx, engine, text, size, settings.PauseDuration(speech.DefaultPause))
}

// speakBatch expands globs and processes each match in turn. The batch
// succeeds when at least one file does.
func speakBatch(ctx context.Context, engine speech.Engine, settings speech.Settings, globs []string) error {
	var paths []string
	for _, g := range globs {
		matches, err := filepath.Glob(g)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", g, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return errors.New("no files matched")
	}

	succeeded := 0
	for _, path := range paths {
		log.Info("processing", "file", path)
		if err := speakFile(ctx, engine, settings, path); err != nil {
			log.Error("failed", "file", path, "err", err)
			continue
		}
		succeeded++
	}
	log.Info("batch done", "succeeded", succeeded, "total", len(paths))
	if succeeded == 0 {
		return errors.New("every file in the batch failed")
	}
	return nil
}

func printVoices(engine speech.Engine) error {
	voices, err := engine.Voices()
	if err != nil {
		return err
	}
	fmt.Printf("%d voices (%s engine):\n", len(voices), engine.Name())
	for _, v := range voices {
		line := fmt.Sprintf("%4d  %s", v.Index, v.Name)
		if len(v.Languages) > 0 {
			line += "  [" + strings.Join(v.Languages, ", ") + "]"
		}
		if v.Gender != "" {
			line += "  (" + v.Gender + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func main() {
	ctx, cancel := signalContext()
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "errors only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "debug output")

	rootCmd.Flags().StringVarP(&inputFile, "file", "f", "", "document to read (txt, pdf, docx, pptx)")
	rootCmd.Flags().StringVarP(&inputText, "text", "t", "", "literal text to read")
	rootCmd.Flags().StringVarP(&inputURL, "url", "u", "", "web page to read (https:// assumed)")
	rootCmd.Flags().StringSliceVarP(&batchGlobs, "batch", "b", nil, "glob pattern(s) of documents to process")
	rootCmd.Flags().BoolVar(&listVoices, "list-voices", false, "list available voices and exit")
	rootCmd.MarkFlagsMutuallyExclusive("file", "text", "url", "batch", "list-voices")

	rootCmd.Flags().IntVar(&voiceIndex, "voice", 0, "voice index (see --list-voices)")
	rootCmd.Flags().Float64VarP(&rateFlag, "rate", "r", 200, "speech rate (engine-specific unit)")
	rootCmd.Flags().Float64Var(&volumeFlag, "volume", 0.9, "volume, 0.0 to 1.0")
	rootCmd.Flags().IntVar(&chunkSize, "chunk-size", speech.DefaultChunkSize, "characters spoken per chunk")
	rootCmd.Flags().Float64Var(&pauseSecs, "pause", 0.5, "seconds of silence between chunks")
	rootCmd.Flags().BoolVar(&noWait, "no-wait", false, "return without waiting for playback")
	rootCmd.Flags().StringVar(&saveAudio, "save-audio", "", `render to an audio file instead of speaking ("auto" derives the name)`)
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "", "speech engine: espeak, gtranslate, or googlecloud")

	rootCmd.Flags().StringVar(&saveConfigName, "save-config", "", "save the effective settings as a named profile")
	rootCmd.Flags().StringVar(&loadConfigName, "load-config", "", "load a named settings profile")

	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("chunk_size", rootCmd.Flags().Lookup("chunk-size"))
	_ = viper.BindPFlag("pause_between_chunks", rootCmd.Flags().Lookup("pause"))

	viper.SetDefault("engine", "")
	viper.SetDefault("rate", 200.0)
	viper.SetDefault("volume", 0.9)
	viper.SetDefault("chunk_size", speech.DefaultChunkSize)
	viper.SetDefault("pause_between_chunks", 0.5)
	viper.SetDefault("google_credentials", "")

	rootCmd.AddCommand(configCmd, serveCmd, profilesCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "speakdoc")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "speakdoc")}, dirs...)
	}

	if c := os.Getenv("SPEAKDOC_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("speakdoc")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("speakdoc")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "speakdoc.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

// signalContext builds the root context canceled by Ctrl-C, giving in-flight
// synthesis a chance to stop cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
