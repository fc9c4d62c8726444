// Package testdb provides migrated databases for tests. By default every call
// gets a fresh SQLite file under t.TempDir(); setting PARAMSTORE_TEST_DB_URL
// runs the same tests against Postgres instead.
package testdb
