package epubtext

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// NewlineMode selects how newline runs in chapter text become break markers.
type NewlineMode string

const (
	// NewlineSingle turns every run of newlines into one break marker.
	NewlineSingle NewlineMode = "single"
	// NewlineDouble only turns runs of two or more newlines into a break
	// marker; single newlines become spaces.
	NewlineDouble NewlineMode = "double"
	// NewlineNone turns every run of newlines into a space.
	NewlineNone NewlineMode = "none"
)

// TitleMode selects where chapter titles come from.
type TitleMode string

const (
	// TitleTag derives titles from the first heading, falling back to the
	// first paragraphs.
	TitleTag TitleMode = "tag"
	// TitleTOC uses the table of contents label of the document only.
	TitleTOC TitleMode = "toc"
	// TitleAuto prefers the table of contents label and falls back to TitleTag.
	TitleAuto TitleMode = "auto"
)

// DefaultMaxAscent bounds how many parent levels the footnote resolver may
// climb from a self-referencing target.
const DefaultMaxAscent = 4

// Config controls chapter extraction for one book.
type Config struct {
	NewlineMode NewlineMode `toml:"newline_mode"`

	// RemoveEndnotes clears footnote markers and their target content.
	RemoveEndnotes bool `toml:"remove_endnotes"`

	// FootnoteTransplant inlines CJK footnote bodies at their markers,
	// wrapped in locale framing. It takes precedence over RemoveEndnotes.
	FootnoteTransplant bool `toml:"fnote_transplant"`

	// SourceLanguage overrides the language declared by the book, e.g. "zh-TW".
	SourceLanguage string `toml:"language"`

	// VoiceLocale is the synthesis voice locale or full voice name,
	// e.g. "zh-CN" or "zh-CN-YunxiNeural".
	VoiceLocale string `toml:"voice_name"`

	TitleMode TitleMode `toml:"title_mode"`

	// MaxAscent defaults to DefaultMaxAscent when zero.
	MaxAscent int `toml:"max_ascent"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		NewlineMode: NewlineDouble,
		TitleMode:   TitleTag,
		MaxAscent:   DefaultMaxAscent,
	}
}

// Validate checks enumerated fields. It returns a *ConfigError.
func (c Config) Validate() error {
	switch c.NewlineMode {
	case NewlineSingle, NewlineDouble, NewlineNone:
	default:
		return &ConfigError{Field: "newline_mode", Value: string(c.NewlineMode), Err: ErrInvalidNewlineMode}
	}
	switch c.TitleMode {
	case "", TitleTag, TitleTOC, TitleAuto:
	default:
		return &ConfigError{Field: "title_mode", Value: string(c.TitleMode), Err: ErrInvalidTitleMode}
	}
	if c.MaxAscent < 0 {
		return &ConfigError{Field: "max_ascent", Value: fmt.Sprint(c.MaxAscent), Err: errors.New("must not be negative")}
	}
	return nil
}

// footnotesEnabled reports whether the footnote resolver runs at all.
func (c Config) footnotesEnabled() bool {
	return c.RemoveEndnotes || c.FootnoteTransplant
}

func (c Config) maxAscent() int {
	if c.MaxAscent == 0 {
		return DefaultMaxAscent
	}
	return c.MaxAscent
}

func (c Config) titleMode() TitleMode {
	if c.TitleMode == "" {
		return TitleTag
	}
	return c.TitleMode
}

// LoadConfig reads a TOML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("epubtext: read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("epubtext: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
