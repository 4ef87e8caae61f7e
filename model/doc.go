// Package model declares the storefront entities as bun models and registers
// them, with their secondary indexes, for migration.
package model
