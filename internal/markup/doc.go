// Package markup detects canonical link, Open Graph, and Twitter card tags in HTML pages.
//
// RegexMatcher is the default and scans raw text; DocumentMatcher walks a
// golang.org/x/net/html tree. Decode turns raw file bytes into text without
// ever failing.
package markup
