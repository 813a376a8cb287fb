package main

import (
	"errors"
	"html"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"

	"pinboard/internal/board"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// readClipboardText prefers pbpaste on macOS, where it can ask for plain
// text, and falls back to the system clipboard.
func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		for _, args := range [][]string{{"-Prefer", "txt"}, nil} {
			if out, err := exec.Command("pbpaste", args...).Output(); err == nil {
				return string(out), nil
			}
		}
	}
	return clipboard.ReadAll()
}

var htmlMarkers = []string{"<html", "<body", "<div", "<p>", "<a ", "<span"}

func looksLikeHTML(text string) bool {
	if !strings.HasPrefix(strings.TrimSpace(text), "<") {
		return false
	}
	lower := strings.ToLower(text)
	for _, tag := range htmlMarkers {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return false
}

// htmlBreaks are tags that end a line of copied text.
var htmlBreaks = map[string]bool{"br": true, "p": true, "div": true, "li": true, "tr": true}

// htmlText drops tags and unescapes entities. Block tags become newlines so
// a copied list of paths keeps one path per line.
func htmlText(src string) string {
	var out, tag strings.Builder
	inTag := false
	for _, r := range src {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			name := strings.TrimPrefix(strings.ToLower(tag.String()), "/")
			if i := strings.IndexAny(name, " /\t"); i >= 0 {
				name = name[:i]
			}
			if htmlBreaks[name] {
				out.WriteByte('\n')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}
	return html.UnescapeString(out.String())
}

// rtfSkipped are destinations whose contents are metadata, not text.
var rtfSkipped = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"expandedcolortbl": true, "pict": true, "*": true,
}

// rtfText extracts the plain text of an RTF document. \par and \line
// become newlines.
func rtfText(src string) string {
	if !strings.HasPrefix(strings.TrimSpace(src), "{\\rtf") {
		return src
	}
	var out strings.Builder
	runes := []rune(src)
	depth, skipFrom := 0, -1
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '{':
			depth++
			continue
		case '}':
			if depth == skipFrom {
				skipFrom = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		}
		if r != '\\' {
			if skipFrom < 0 {
				out.WriteRune(r)
			}
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		next := runes[i+1]
		switch next {
		case '\\', '{', '}':
			if skipFrom < 0 {
				out.WriteRune(next)
			}
			i++
			continue
		case '\n':
			if skipFrom < 0 {
				out.WriteByte('\n')
			}
			i++
			continue
		case '\'':
			// \'hh is a code page byte; only ASCII survives.
			if i+3 < len(runes) {
				if b, err := strconv.ParseUint(string(runes[i+2:i+4]), 16, 8); err == nil && b < 0x80 && skipFrom < 0 {
					out.WriteByte(byte(b))
				}
			}
			i += 3
			continue
		}
		// Control word: letters, an optional numeric parameter, one
		// optional delimiting space.
		j := i + 1
		for j < len(runes) && (isASCIILetter(runes[j]) || runes[j] == '*') {
			j++
			if runes[j-1] == '*' {
				break
			}
		}
		word := string(runes[i+1 : j])
		for j < len(runes) && (runes[j] == '-' || (runes[j] >= '0' && runes[j] <= '9')) {
			j++
		}
		if j < len(runes) && runes[j] == ' ' {
			j++
		}
		i = j - 1
		switch {
		case rtfSkipped[word] && skipFrom < 0:
			skipFrom = depth
		case (word == "par" || word == "line") && skipFrom < 0:
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// cleanClipboardText reduces rich clipboard content to plain lines and
// drops lines that cannot name an asset.
func cleanClipboardText(text string) string {
	text = rtfText(text)
	if looksLikeHTML(text) {
		text = htmlText(text)
	}
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Map(func(r rune) rune {
			if r == '\t' || r >= 32 {
				return r
			}
			return -1
		}, line)
		if plausibleRef(line) {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return strings.Join(lines, "\n")
}

// plausibleRef rejects blank lines and leftover markup or punctuation.
func plausibleRef(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsAny(line[:1], "{}<\\;") {
		return false
	}
	return strings.IndexFunc(line, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

// parseDroppedRefs turns pasted or dropped text into asset references, one
// per line. Terminals deliver a multi-file drop as one line of escaped or
// quoted paths, which is split when every token looks like a path.
func parseDroppedRefs(text string) []board.ExternalRef {
	var refs []board.ExternalRef
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens := splitShellWords(line)
		if len(tokens) > 1 && allLookLikePaths(tokens) {
			for _, tok := range tokens {
				refs = append(refs, normalizeRef(tok))
			}
			continue
		}
		if len(tokens) == 1 {
			refs = append(refs, normalizeRef(tokens[0]))
			continue
		}
		refs = append(refs, normalizeRef(line))
	}
	return refs
}

// splitShellWords splits on unescaped whitespace, honouring single and
// double quotes and backslash escapes.
func splitShellWords(line string) []string {
	var (
		words []string
		cur   strings.Builder
		quote rune
		esc   bool
		has   bool
	)
	for _, r := range line {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == '\\' && quote != '\'':
			esc = true
			has = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			has = true
		case r == ' ' || r == '\t':
			if has {
				words = append(words, cur.String())
				cur.Reset()
				has = false
			}
		default:
			cur.WriteRune(r)
			has = true
		}
	}
	if has {
		words = append(words, cur.String())
	}
	return words
}

func allLookLikePaths(tokens []string) bool {
	for _, t := range tokens {
		if !strings.HasPrefix(t, "/") && !strings.HasPrefix(t, "~/") && !strings.HasPrefix(t, "file://") {
			return false
		}
	}
	return true
}

func normalizeRef(s string) board.ExternalRef {
	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil && u.Path != "" {
			s = u.Path
		}
	}
	return board.ExternalRef(expandHome(s))
}
