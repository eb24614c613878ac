// Package siteguard implements the check command: a soft SEO guard for static sites.
//
// Changed pages are checked for a canonical link matching their published URL and, for
// share-worthy pages, for OG and Twitter metadata. Added pages must appear in the sitemap.
// Every finding is emitted as a "::warning::" annotation; the run fails only in strict mode
// when an error-class finding was reported.
package siteguard
