// Command epub2md converts ePub e-books to Markdown.
//
// Convert one book, writing book.md next to it or to the -o path:
//
//	epub2md book.epub
//	epub2md book.epub -o output.md
//
// Convert every book in a folder:
//
//	epub2md --all
//	epub2md --all --folder /path/to/books --output-folder ./markdown_books
//
// Settings are read from ~/.config/epub2md/config.toml (or ./epub2md.toml);
// create one with "epub2md config init".
package main
