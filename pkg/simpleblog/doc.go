// Package simpleblog provides a small blogging backend: authors, blog posts
// with nested comments, avatar/cover media sideload and PDF export of a post.
//
// A single Service orchestrates the operations over pluggable collection
// repositories (memory, JSON files, SQLite, Postgres) and media blob stores
// (memory, filesystem, S3). Implementations live under the repo and storage
// subpackages; an HTTP surface is provided by the api subpackage.
//
// # Persistence Model
//
// Each resource type is a named collection of records keyed by id. Records keep
// their insertion order so that a collection can be loaded and saved as a whole
// (the flat JSON file format used by the jsonfile backend), while single-record reads and writes go
// through the key-indexed Get/Put/Update/Delete operations. Update is atomic per
// backend, so concurrent patches of the same record do not lose writes.
package simpleblog
