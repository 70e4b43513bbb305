// Command epubtext writes the chapters of an ePub as plain text files ready
// for speech synthesis.
//
//	epubtext --tts edge --voice-name zh-CN-YunxiNeural --fnote-transplant book.epub out/
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
