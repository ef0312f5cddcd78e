package epubmd

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"
)

var headingLevels = map[atom.Atom]int{
	atom.H1: 1,
	atom.H2: 2,
	atom.H3: 3,
	atom.H4: 4,
	atom.H5: 5,
	atom.H6: 6,
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	blankLineRun  = regexp.MustCompile(`\n{3,}`)
)

// parserState is the state threaded through one ToMarkdown call.
type parserState struct {
	tagStack []string

	// listCounters holds one entry per open list, innermost last:
	// 0 for an unordered list, otherwise the next ordinal to emit.
	listCounters []int

	inPre    bool
	inCode   bool
	suppress bool // inside script or style

	buf strings.Builder
}

// ToMarkdown converts one HTML/XHTML document to Markdown in a single pass.
//
// Headings, paragraphs, line breaks, rules, bold, italics, inline code,
// preformatted blocks, nested ordered and unordered lists and blockquotes are
// rendered; all other tags are dropped and their text kept. Links lose their
// targets. Script and style content never appears in the output.
//
// Outside pre and code elements, runs of whitespace collapse to one space.
// The result has no leading or trailing whitespace and never contains more
// than one consecutive blank line.
//
// ToMarkdown accepts arbitrary tag soup and never fails. It holds no state
// between calls and is safe for concurrent use.
func ToMarkdown(markup string) string {
	var s parserState
	for tok := range tokens(markup) {
		s.apply(tok)
	}
	return s.finish()
}

func (s *parserState) apply(tok token) {
	switch tok.kind {
	case startTagToken:
		s.startTag(tok)
	case endTagToken:
		s.endTag(tok)
	case textToken:
		s.text(tok.text)
	}
}

func (s *parserState) startTag(tok token) {
	s.tagStack = append(s.tagStack, tok.name)

	if level, ok := headingLevels[tok.tag]; ok {
		s.buf.WriteString("\n" + strings.Repeat("#", level) + " ")
		return
	}

	switch tok.tag {
	case atom.Script, atom.Style:
		s.suppress = true
	case atom.P:
		s.buf.WriteString("\n\n")
	case atom.Br:
		s.buf.WriteString("  \n")
	case atom.Hr:
		s.buf.WriteString("\n\n---\n\n")
	case atom.Strong, atom.B:
		s.buf.WriteString("**")
	case atom.Em, atom.I:
		s.buf.WriteString("*")
	case atom.Code:
		s.inCode = true
		s.buf.WriteString("`")
	case atom.Pre:
		s.inPre = true
		s.buf.WriteString("\n\n```\n")
	case atom.Ul:
		s.listCounters = append(s.listCounters, 0)
		s.buf.WriteString("\n")
	case atom.Ol:
		s.listCounters = append(s.listCounters, 1)
		s.buf.WriteString("\n")
	case atom.Li:
		s.listItem()
	case atom.Blockquote:
		s.buf.WriteString("\n> ")
	}
}

// listItem writes the marker of a list item. An item outside any list is
// rendered as a top-level bullet.
func (s *parserState) listItem() {
	depth := len(s.listCounters)
	if depth == 0 {
		s.buf.WriteString("- ")
		return
	}

	indent := strings.Repeat("  ", depth-1)
	n := s.listCounters[depth-1]
	if n == 0 {
		s.buf.WriteString(indent + "- ")
		return
	}
	s.buf.WriteString(indent + strconv.Itoa(n) + ". ")
	s.listCounters[depth-1]++
}

func (s *parserState) endTag(tok token) {
	// Mismatched end tags leave the stack untouched.
	if n := len(s.tagStack); n > 0 && s.tagStack[n-1] == tok.name {
		s.tagStack = s.tagStack[:n-1]
	}

	if _, ok := headingLevels[tok.tag]; ok {
		s.buf.WriteString("\n")
		return
	}

	switch tok.tag {
	case atom.Script, atom.Style:
		s.suppress = false
	case atom.P:
		s.buf.WriteString("\n")
	case atom.Strong, atom.B:
		s.buf.WriteString("**")
	case atom.Em, atom.I:
		s.buf.WriteString("*")
	case atom.Code:
		s.inCode = false
		s.buf.WriteString("`")
	case atom.Pre:
		s.inPre = false
		s.buf.WriteString("\n```\n\n")
	case atom.Ul, atom.Ol:
		if n := len(s.listCounters); n > 0 {
			s.listCounters = s.listCounters[:n-1]
		}
		s.buf.WriteString("\n")
	case atom.Li:
		s.buf.WriteString("\n")
	}
}

func (s *parserState) text(t string) {
	if s.suppress {
		return
	}
	if !s.inPre && !s.inCode {
		t = whitespaceRun.ReplaceAllLiteralString(t, " ")
	}
	s.buf.WriteString(t)
}

func (s *parserState) finish() string {
	out := blankLineRun.ReplaceAllLiteralString(s.buf.String(), "\n\n")
	return strings.TrimSpace(out)
}
