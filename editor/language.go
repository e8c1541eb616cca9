package editor

import (
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"
)

// DetectLanguage names the language of a file for the tab bar and the
// highlighter. Content-based detection first, then the lexer registry
// by filename, then the bare extension.
func DetectLanguage(path string) string {
	var content []byte
	if data, err := os.ReadFile(path); err == nil {
		if len(data) > 16*1024 {
			data = data[:16*1024]
		}
		content = data
	}

	if lang := enry.GetLanguage(filepath.Base(path), content); lang != "" {
		return lang
	}
	if lexer := lexers.Match(filepath.Base(path)); lexer != nil {
		return lexer.Config().Name
	}
	if ext := filepath.Ext(path); ext != "" {
		return ext[1:]
	}
	return "plain"
}
