// Package sitemap loads the set of page locations listed in an XML sitemap.
package sitemap
