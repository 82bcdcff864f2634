// Package teachstore implements a teaching-material management backend:
// users and roles, a category hierarchy, learning materials, and a
// content-addressed blob store that deduplicates uploaded files by SHA-256.
//
// The package is transport-agnostic. It exposes a Service interface built
// with functional options over two ports: a Repository for metadata and a
// FileStore for file bytes. HTTP bindings live in teachstore/api, storage
// and repository implementations under teachstore/storage and
// teachstore/repo.
package teachstore
