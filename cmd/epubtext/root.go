package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simp-lee/epubtext"
	"github.com/simp-lee/epubtext/epub"
	"github.com/simp-lee/epubtext/internal/voice"
)

var (
	configPath      string
	newlineMode     string
	removeEndnotes  bool
	fnoteTransplant bool
	sourceLanguage  string
	voiceName       string
	ttsName         string
	outputFormat    string
	titleMode       string
	chapterStart    int
	chapterEnd      int
	preview         bool
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "epubtext [flags] <input.epub> <output-dir>",
	Short: "Extract ePub chapters as text for speech synthesis",
	Long: `Reads an ePub in reading order and writes one text file per chapter,
named NNNN_Title.txt. Line breaks become the break marker of the selected
TTS provider, footnotes can be removed or inlined, and Traditional Chinese
is converted to Simplified when the voice asks for it.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "TOML config file")
	f.StringVar(&newlineMode, "newline-mode", string(epubtext.NewlineDouble), "newline handling: single, double or none")
	f.BoolVar(&removeEndnotes, "remove-endnotes", false, "remove footnote markers and their text")
	f.BoolVar(&fnoteTransplant, "fnote-transplant", false, "inline CJK footnotes at their markers")
	f.StringVar(&sourceLanguage, "language", "", "source language, overrides the book (e.g. zh-TW)")
	f.StringVar(&voiceName, "voice-name", "", "voice locale or name (e.g. zh-CN-YunxiNeural)")
	f.StringVar(&ttsName, "tts", voice.Azure, "TTS provider: azure, openai, edge or piper")
	f.StringVar(&outputFormat, "output-format", "", "provider output format (default depends on --tts)")
	f.StringVar(&titleMode, "title-mode", string(epubtext.TitleTag), "chapter titles from: tag, toc or auto")
	f.IntVar(&chapterStart, "chapter-start", 1, "first chapter to write (1-based)")
	f.IntVar(&chapterEnd, "chapter-end", -1, "last chapter to write, -1 for the last one")
	f.BoolVar(&preview, "preview", false, "list chapters without writing files")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func runExtract(cmd *cobra.Command, args []string) error {
	input, outDir := args[0], args[1]

	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	provider, err := voice.New(ttsName, outputFormat)
	if err != nil {
		return err
	}

	book, err := epub.Open(input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer book.Close()
	for _, w := range book.Warnings() {
		logger.Warn("epub warning", zap.String("warning", w))
	}

	info := epubtext.BookInfoOf(book)
	logger.Info("extracting chapters",
		zap.String("title", info.Title),
		zap.Strings("authors", info.Authors),
		zap.String("tts", provider.Name()))

	ex := epubtext.NewExtractor(cfg, epubtext.WithLogger(logger))
	chapters, err := ex.Extract(cmd.Context(), book, provider.BreakString())
	if err != nil {
		return err
	}

	start, end, err := chapterRange(chapterStart, chapterEnd, len(chapters))
	if err != nil {
		return err
	}
	selected := chapters[start-1 : end]

	total := 0
	for _, ch := range selected {
		total += utf8.RuneCountInString(ch.Text)
	}
	logger.Info("selected chapters",
		zap.Int("start", start), zap.Int("end", end), zap.Int("characters", total))

	if preview {
		for _, ch := range selected {
			logger.Info("chapter",
				zap.Int("index", ch.Index),
				zap.String("title", ch.Title),
				zap.Int("characters", utf8.RuneCountInString(ch.Text)),
				zap.String("audio", chapterFileName(ch, provider.OutputExtension())))
		}
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, ch := range selected {
		name := filepath.Join(outDir, chapterFileName(ch, "txt"))
		if err := os.WriteFile(name, []byte(ch.Text), 0o644); err != nil {
			return fmt.Errorf("write chapter %d: %w", ch.Index, err)
		}
		logger.Debug("wrote chapter", zap.String("file", name))
	}
	logger.Info("done", zap.Int("chapters", len(selected)), zap.String("dir", outDir))
	return nil
}

// loadConfig layers the config file (if any) under the flags that were set
// explicitly on the command line.
func loadConfig(cmd *cobra.Command) (epubtext.Config, error) {
	cfg := epubtext.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = epubtext.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("newline-mode") || configPath == "" {
		cfg.NewlineMode = epubtext.NewlineMode(newlineMode)
	}
	if f.Changed("title-mode") || configPath == "" {
		cfg.TitleMode = epubtext.TitleMode(titleMode)
	}
	if f.Changed("remove-endnotes") {
		cfg.RemoveEndnotes = removeEndnotes
	}
	if f.Changed("fnote-transplant") {
		cfg.FootnoteTransplant = fnoteTransplant
	}
	if f.Changed("language") {
		cfg.SourceLanguage = sourceLanguage
	}
	if f.Changed("voice-name") {
		cfg.VoiceLocale = voiceName
	}
	return cfg, cfg.Validate()
}

// chapterRange resolves the requested 1-based range against n chapters.
// end == -1 means the last chapter.
func chapterRange(start, end, n int) (int, int, error) {
	if n == 0 {
		return 0, 0, errors.New("book has no chapters")
	}
	if start < 1 || start > n {
		return 0, 0, fmt.Errorf("chapter start index %d is out of range 1..%d", start, n)
	}
	if end == -1 {
		end = n
	}
	if end < 1 || end > n {
		return 0, 0, fmt.Errorf("chapter end index %d is out of range 1..%d", end, n)
	}
	if start > end {
		return 0, 0, fmt.Errorf("chapter start index %d is larger than end index %d", start, end)
	}
	return start, end, nil
}

func chapterFileName(ch epubtext.Chapter, ext string) string {
	return fmt.Sprintf("%04d_%s.%s", ch.Index, ch.Title, ext)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
