// Package repository defines the persistence interface for item
// documents.
//
// Each item serializes to a plain attribute document and is stored
// under its (collection, name) pair. The Store interface keeps the
// domain layer independent of the backing engine; the sqlite subpackage
// provides the implementation used by the daemon.
package repository
