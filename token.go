package epubmd

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type tokenKind int

const (
	startTagToken tokenKind = iota
	endTagToken
	textToken
)

// token is one lexical unit of a markup document.
type token struct {
	kind tokenKind
	tag  atom.Atom // zero for unknown tag names and for text
	name string    // lowercased tag name
	text string    // text with character references decoded
}

// rawTextTags are the elements whose content is read verbatim, without
// recognising nested tags. Every other element, title and textarea included,
// has its content tokenized normally.
var rawTextTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// tokens returns an iterator over the start tags, end tags and text runs of
// markup. Comments, doctypes and processing instructions are dropped. A
// self-closing tag such as <br/> yields a start token immediately followed by
// its end token. The iterator never fails: the tokenizer recovers from any
// malformed input and stops at end of input.
func tokens(markup string) iter.Seq[token] {
	return func(yield func(token) bool) {
		z := html.NewTokenizer(strings.NewReader(markup))
		for {
			switch z.Next() {
			case html.ErrorToken:
				return

			case html.StartTagToken:
				tok := tagToken(z, startTagToken)
				if !rawTextTags[tok.tag] {
					z.NextIsNotRawText()
				}
				if !yield(tok) {
					return
				}

			case html.SelfClosingTagToken:
				// <script/> has no content, so the tokenizer must not
				// swallow what follows as raw text.
				z.NextIsNotRawText()
				tok := tagToken(z, startTagToken)
				if !yield(tok) {
					return
				}
				tok.kind = endTagToken
				if !yield(tok) {
					return
				}

			case html.EndTagToken:
				if !yield(tagToken(z, endTagToken)) {
					return
				}

			case html.TextToken:
				if !yield(token{kind: textToken, text: string(z.Text())}) {
					return
				}
			}
		}
	}
}

func tagToken(z *html.Tokenizer, kind tokenKind) token {
	tn, _ := z.TagName()
	return token{
		kind: kind,
		tag:  atom.Lookup(tn),
		name: string(tn),
	}
}
