package epubtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"http", "See https://example.com/a?b=1 now", "See  now"},
		{"trailing period kept", "Visit http://example.com.", "Visit ."},
		{"cjk after url", "网址https://example.com。后续内容", "网址。后续内容"},
		{"cjk before mailto", "邮件mailto:a@b.cn。谢谢", "邮件。谢谢"},
		{"newsgroup", "read news:comp.lang.go daily", "read  daily"},
		{"news prose", "Breaking News:今天的新闻", "Breaking News:今天的新闻"},
		{"news word", "News: today", "News: today"},
		{"word ending in news", "goodnews:comp.lang.go", "goodnews:comp.lang.go"},
		{"bare scheme", "use https:// here", "use https:// here"},
		{"ftp", "ftp://files.example.com/x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripURLs(tt.input))
		})
	}
}
