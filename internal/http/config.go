package http

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books     BookCatalog
	Checkouts CheckoutCatalog
	Users     UserCatalog

	// Snapshot maintenance
	Resyncer       SnapshotResyncer
	SnapshotStatus SnapshotStatusReporter

	// Audit trail (optional)
	Audit AuditReader

	// Health checks
	Store Pinger

	// Application info
	Version string
}
