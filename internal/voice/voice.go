// Package voice describes the speech synthesis backends chapter text is
// prepared for. Only the parts the text pipeline depends on are modelled:
// the break marker a backend turns into a pause and the audio file
// extension it produces.
package voice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownProvider is returned by New for a name outside Names().
	ErrUnknownProvider = errors.New("voice: unknown provider")

	// ErrUnsupportedFormat is returned by New when a provider cannot produce
	// the requested output format.
	ErrUnsupportedFormat = errors.New("voice: unsupported output format")
)

// Provider names.
const (
	Azure  = "azure"
	Edge   = "edge"
	OpenAI = "openai"
	Piper  = "piper"
)

const (
	// sentinelBreak is rewritten into an SSML pause by the azure, edge and
	// piper backends.
	sentinelBreak = " @BRK#"

	// spaceBreak relies on the openai voices pausing on a run of spaces.
	spaceBreak = "   "
)

// Provider is one synthesis backend.
type Provider interface {
	Name() string

	// BreakString is the marker inserted at paragraph breaks.
	BreakString() string

	// OutputExtension is the audio file extension, without the dot.
	OutputExtension() string
}

// Names lists the supported providers.
func Names() []string {
	return []string{Azure, OpenAI, Edge, Piper}
}

// DefaultFormat returns the output format a provider uses when none is
// configured.
func DefaultFormat(name string) string {
	switch name {
	case Azure, Edge:
		return "audio-24khz-48kbitrate-mono-mp3"
	case OpenAI:
		return "mp3"
	case Piper:
		return "wav"
	}
	return ""
}

// New returns the provider called name producing outputFormat. An empty
// outputFormat selects DefaultFormat(name).
func New(name, outputFormat string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if outputFormat == "" {
		outputFormat = DefaultFormat(name)
	}
	var (
		p   provider
		err error
	)
	switch name {
	case Azure:
		p = provider{name: name, brk: sentinelBreak}
		p.ext, err = azureExtension(outputFormat)
	case Edge:
		p = provider{name: name, brk: sentinelBreak, ext: "mp3"}
		if !strings.HasSuffix(outputFormat, "mp3") {
			err = fmt.Errorf("%w: %s only produces mp3, got %q", ErrUnsupportedFormat, name, outputFormat)
		}
	case OpenAI:
		p = provider{name: name, brk: spaceBreak, ext: outputFormat}
	case Piper:
		p = provider{name: name, brk: sentinelBreak, ext: outputFormat}
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownProvider, name, strings.Join(Names(), ", "))
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type provider struct {
	name string
	brk  string
	ext  string
}

func (p provider) Name() string            { return p.name }
func (p provider) BreakString() string     { return p.brk }
func (p provider) OutputExtension() string { return p.ext }

// azureExtension maps an Azure output format name such as
// "audio-24khz-48kbitrate-mono-mp3" to a file extension.
func azureExtension(format string) (string, error) {
	switch {
	case strings.HasPrefix(format, "amr"):
		return "amr", nil
	case strings.HasPrefix(format, "ogg"):
		return "ogg", nil
	case strings.HasSuffix(format, "truesilk"):
		return "silk", nil
	case strings.HasSuffix(format, "pcm"):
		return "pcm", nil
	case strings.HasPrefix(format, "raw"):
		return "wav", nil
	case strings.HasPrefix(format, "webm"):
		return "webm", nil
	case strings.HasSuffix(format, "opus"):
		return "opus", nil
	case strings.HasSuffix(format, "mp3"):
		return "mp3", nil
	}
	return "", fmt.Errorf("%w: azure %q", ErrUnsupportedFormat, format)
}
