// Package epubtext turns an ePub package into an ordered list of clean
// chapter texts for speech synthesis.
//
// The Extractor loads every reading-order document, derives a title for
// each, optionally removes or inlines footnotes (also across documents),
// and normalizes line breaks into a break marker chosen by the synthesis
// backend:
//
//	cfg := epubtext.DefaultConfig()
//	cfg.FootnoteTransplant = true
//	cfg.VoiceLocale = "zh-CN-YunxiNeural"
//
//	chapters, err := epubtext.NewExtractor(cfg).ExtractFile(ctx, "book.epub", " @BRK#")
//	if err != nil {
//		return err
//	}
//	for _, ch := range chapters {
//		fmt.Println(ch.Index, ch.Title, len(ch.Text))
//	}
//
// Documents without a heading or paragraph to title them are dropped.
// Package-level failures are reported as *PackageError, bad settings as
// *ConfigError.
package epubtext
