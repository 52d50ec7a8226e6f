package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/sqlstore"
	"github.com/mrlokans/library/internal/exporters"
	"github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/store"
	"github.com/mrlokans/library/internal/tasks"
)

// =============================================================================
// Entity Store
// =============================================================================

var _ store.Store = (*database.Database)(nil)
var _ store.Store = (*sqlstore.Store)(nil)

// =============================================================================
// Snapshot
// =============================================================================

var _ exporters.SnapshotExporter = (*exporters.FileSnapshotExporter)(nil)
var _ catalog.Synchronizer = (*catalog.SnapshotSync)(nil)
var _ catalog.RepairQueue = (*tasks.ResyncQueue)(nil)
var _ tasks.Resyncer = (*catalog.SnapshotSync)(nil)
var _ scheduler.SnapshotResyncer = (*catalog.Service)(nil)

// =============================================================================
// Audit
// =============================================================================

var _ catalog.EventRecorder = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

// =============================================================================
// HTTP Controllers
// =============================================================================

var _ http.BookCatalog = (*catalog.Service)(nil)
var _ http.CheckoutCatalog = (*catalog.Service)(nil)
var _ http.UserCatalog = (*catalog.Service)(nil)
var _ http.SnapshotResyncer = (*catalog.Service)(nil)
var _ http.SnapshotStatusReporter = (*catalog.SnapshotSync)(nil)
var _ http.Pinger = (store.Store)(nil)
