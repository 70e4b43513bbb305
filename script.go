package epubtext

import (
	"fmt"
	"strings"

	"github.com/longbridgeapp/opencc"
	"golang.org/x/text/language"
)

// ScriptConverter rewrites Traditional Chinese text in Simplified script.
type ScriptConverter interface {
	Convert(text string) (string, error)
}

// NewScriptConverter loads the OpenCC t2s dictionaries. Build one per book
// and drop it with the book.
func NewScriptConverter() (ScriptConverter, error) {
	cc, err := opencc.New("t2s")
	if err != nil {
		return nil, fmt.Errorf("epubtext: load t2s converter: %w", err)
	}
	return cc, nil
}

// NeedsSimplified reports whether text in sourceLang must be converted for a
// voice with the given locale: the source is written in Traditional script
// (zh-TW, zh-HK, zh-Hant, ...) and the voice speaks Simplified
// (zh-CN, zh-SG, zh-Hans, ...). Full voice names such as
// "zh-CN-YunxiNeural" are accepted.
func NeedsSimplified(sourceLang, voiceLocale string) bool {
	return localeScript(sourceLang) == "Hant" && localeScript(voiceLocale) == "Hans"
}

// localeScript returns the Chinese script ("Hans" or "Hant") implied by a
// locale or voice name, or "" for anything that is not Chinese. Trailing
// subtags are dropped until the rest parses as a BCP 47 tag.
func localeScript(v string) string {
	v = strings.ReplaceAll(strings.TrimSpace(v), "_", "-")
	if v == "" {
		return ""
	}
	parts := strings.Split(v, "-")
	for n := len(parts); n > 0; n-- {
		tag, err := language.Parse(strings.Join(parts[:n], "-"))
		if err != nil {
			continue
		}
		if base, _ := tag.Base(); base.String() != "zh" {
			return ""
		}
		script, _ := tag.Script()
		return script.String()
	}
	return ""
}
