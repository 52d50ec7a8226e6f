// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Entity Store
//
//   - store.Store: transactional access to books and users (internal/store/store.go)
//   - store.Tx: operations valid inside one transaction
//
// Implementations: database.Database (gorm + sqlite) and sqlstore.Store
// (sqlx + goqu over sqlite3 or postgres). Both must pass
// storetest.RunContract.
//
// ## Snapshot
//
//   - exporters.SnapshotExporter: writes the full book collection (internal/exporters/generic.go)
//   - catalog.Synchronizer: refreshes the snapshot after a mutation (internal/catalog/service.go)
//   - catalog.RepairQueue: schedules a background resync (internal/catalog/snapshot_sync.go)
//
// ## Audit
//
//   - catalog.EventRecorder: receives one event per catalog operation
//
// ## HTTP
//
//   - BookCatalog, CheckoutCatalog, UserCatalog: catalog slices per controller (internal/http/stores.go)
//   - SnapshotResyncer, SnapshotStatusReporter, AuditReader, Pinger
//
// # Adding a New Entity Store Backend
//
//  1. Implement store.Store and store.Tx, translating "no rows" into store.ErrNotFound
//
//  2. Run the shared contract from the package tests:
//
//     func TestMyStore_Contract(t *testing.T) {
//         storetest.RunContract(t, func(t *testing.T) store.Store { return openMyStore(t) })
//     }
//
//  3. Add a backend name in internal/config and a case in entrypoint.OpenStore
//
//  4. Add a compile-time check in checks.go
//
// # Adding a New Snapshot Format
//
//  1. Add a Format constant and accept it in exporters.ParseFormat
//
//  2. Add a writer and a case in FileSnapshotExporter.encoder. Writers receive
//     the temp file, so they never need to handle atomic replacement.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
