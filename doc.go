// Package epubmd converts ePub e-books to Markdown.
//
// An ePub is a ZIP container of HTML/XHTML documents. [Open] lists those
// documents, [Archive.Parts] reads them in name order, and [ToMarkdown]
// turns each one into a Markdown fragment in a single pass over its tags.
// [Convert] ties the steps together for one file and [ConvertDir] for a
// folder of files.
//
// # Converting a book
//
//	res, err := epubmd.Convert("book.epub", "book.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.OutputPath, res.Chars)
//
// # Reading order
//
// Document parts are ordered by their ZIP-internal name; the OPF spine is not
// consulted. Parts whose lowercased name contains "nav", "toc" or "copyright"
// are skipped.
//
// # Markdown output
//
// [ToMarkdown] renders headings, paragraphs, line breaks, horizontal rules,
// bold, italics, inline code, preformatted blocks (as fenced code), nested
// ordered and unordered lists and blockquotes. Other tags are dropped and
// their text kept; link targets and images are not carried over. Malformed
// markup is accepted as is.
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - [ErrNotFound] – the archive or folder does not exist
//   - [ErrInvalidArchive] – the file is not a ZIP container
//   - [ErrDRMProtected] – the content is DRM encrypted
//   - [ErrDecode] – a document part is not valid UTF-8
//
// Failures confined to one document part are reported as [*PartError]; the
// part is skipped and the conversion continues.
package epubmd
