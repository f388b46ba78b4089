package engine

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"

	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// DetectLanguage names the language of a file from its extension, falling
// back to its content. It returns "" when nothing matches.
func DetectLanguage(name string, content []byte) string {
	base := filepath.Base(name)
	if lang, safe := enry.GetLanguageByExtension(base); safe {
		return lang
	}
	return enry.GetLanguage(base, content)
}

// LexerFor returns the chroma lexer for a language, then for the file name,
// then by analysing the text. It never returns nil.
func LexerFor(language, name, text string) chroma.Lexer {
	if language != "" {
		if l := lexers.Get(language); l != nil {
			return l
		}
	}
	if name != "" {
		if l := lexers.Match(filepath.Base(name)); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}

// Tokenize lexes lines as one text and splits the tokens back into per-line
// runs. Run offsets are UTF-16 units within the line; adjacent runs of the
// same class are merged. A lexer failure leaves every line unstyled.
func Tokenize(lexer chroma.Lexer, lines []string) [][]snapshot.TokenRun {
	out := make([][]snapshot.TokenRun, len(lines))
	tokens, err := chroma.Tokenise(chroma.Coalesce(lexer), nil, strings.Join(lines, "\n"))
	if err != nil {
		return out
	}

	line, offset := 0, 0
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		class := TokenClass(tok.Type)
		for i, piece := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				line++
				offset = 0
			}
			if line >= len(lines) {
				return out
			}
			if piece == "" {
				continue
			}
			offset += snapshot.UTF16Len(piece)
			out[line] = appendRun(out[line], snapshot.TokenRun{EndOffset: offset, StyleClass: class})
		}
	}
	return out
}

func appendRun(runs []snapshot.TokenRun, r snapshot.TokenRun) []snapshot.TokenRun {
	if n := len(runs); n > 0 && runs[n-1].StyleClass == r.StyleClass {
		runs[n-1].EndOffset = r.EndOffset
		return runs
	}
	return append(runs, r)
}

// TokenClass returns the short style class of a token type ("kd", "s2"),
// falling back to its sub-category and then its category.
func TokenClass(tt chroma.TokenType) string {
	for _, t := range []chroma.TokenType{tt, tt.SubCategory(), tt.Category()} {
		if c, ok := chroma.StandardTypes[t]; ok && c != "" {
			return c
		}
	}
	return ""
}
