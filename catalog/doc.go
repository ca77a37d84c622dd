// Package catalog resolves catalog references to literal copies of the
// referenced catalog entries.
//
// Catalog files are found by walking the directories configured as catalog
// locations. Each directory is indexed at most once per [Cache], and a cache
// may be shared by any number of concurrent resolutions. Resolving an entry
// binds its parameter declarations to the reference's assignments over the
// caller's scope and then substitutes every value in a copy of the entry,
// recursing into nested references up to a fixed depth.
package catalog
