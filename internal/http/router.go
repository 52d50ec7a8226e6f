package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Store, cfg.SnapshotStatus, cfg.Version)
	booksController := NewBooksController(cfg.Books)
	checkoutsController := NewCheckoutsController(cfg.Checkouts)
	usersController := NewUsersController(cfg.Users)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Books
	router.POST("/books", booksController.AddBook)
	router.GET("/books", booksController.GetAllBooks)
	router.GET("/books/:id", booksController.GetBook)
	router.PUT("/books/:id", booksController.EditBook)
	router.DELETE("/books/:id", booksController.DeleteBook)

	// Checkouts
	router.POST("/books/:id/checkout/:user_id", checkoutsController.CheckOutBook)
	router.POST("/books/:id/return", checkoutsController.ReturnBook)
	router.GET("/checked-out-users", checkoutsController.GetCheckedOutUsers)

	// Users
	router.POST("/users", usersController.AddUser)
	router.GET("/users/:id/books", usersController.GetBorrowedBooks)

	// Snapshot maintenance
	if cfg.Resyncer != nil && cfg.SnapshotStatus != nil {
		snapshotController := NewSnapshotController(cfg.Resyncer, cfg.SnapshotStatus)
		router.POST("/api/snapshot/resync", snapshotController.Resync)
		router.GET("/api/snapshot/status", snapshotController.Status)
	}

	// Audit trail
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		router.GET("/api/audit", auditController.GetEvents)
	}

	return router
}
