// Package repository implements a generic repository and unit of work over
// Bun. Repositories stage inserts, updates and deletes in a DbContext shared
// by the unit of work; nothing is written until Save, which flushes all of
// it in one transaction.
package repository
