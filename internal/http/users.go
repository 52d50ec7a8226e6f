package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type UsersController struct {
	catalog UserCatalog
}

func NewUsersController(catalog UserCatalog) *UsersController {
	return &UsersController{
		catalog: catalog,
	}
}

type addUserRequest struct {
	Name string `form:"name" json:"name"`
}

// AddUser registers a user.
// POST /users
func (controller *UsersController) AddUser(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := controller.catalog.AddUser(c.Request.Context(), req.Name)
	var data any
	if user != nil {
		data = user.Summary()
	}
	respondMutation(c, err, "User added successfully", data, "User")
}

// GetBorrowedBooks lists books held by a user.
// GET /users/:id/books
func (controller *UsersController) GetBorrowedBooks(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	books, err := controller.catalog.ListBorrowedBooks(c.Request.Context(), userID)
	if err != nil {
		respondCatalogError(c, err, "User", "list borrowed books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": bookSummaries(books), "count": len(books)})
}
