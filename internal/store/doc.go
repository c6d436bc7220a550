// Package store implements the SQL-backed quint store.
//
// One Store implementation serves both backends; everything engine
// specific lives behind the Dialect interface: driver selection,
// placeholder syntax, upsert syntax, connection-pool shape, and the
// separator-byte substitution Postgres needs. There is no backend
// subclassing and no partial method overriding.
//
// # Concurrency
//
// The SQLite dialect pins the pool to a single connection, so
// statements execute sequentially; the Postgres dialect keeps a real
// pool and distinct calls may run concurrently. MultiPut and MultiDel
// hold one transaction (hence one connection) for their whole duration
// and roll back entirely on any statement failure. Open and Close are
// safe to race; every other method fails with ErrNotOpen until Open
// has returned.
package store
