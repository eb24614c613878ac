// Package pages selects the HTML pages a run checks and maps them to their published URLs.
//
// Selection starts from newline-separated change lists; entries are kept only when they exist
// and end in ".html". When no list yields a page, the files matching a fallback pattern under
// the repository root are checked instead.
package pages
