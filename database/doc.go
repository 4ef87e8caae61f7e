// Package database opens Bun connections for mysql, postgres and sqlite,
// keeps them healthy, and migrates the storefront schema. It also classifies
// driver errors and runs the SQL seed scripts.
package database
