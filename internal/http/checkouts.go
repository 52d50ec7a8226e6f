package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/entities"
)

type CheckoutsController struct {
	catalog CheckoutCatalog
}

func NewCheckoutsController(catalog CheckoutCatalog) *CheckoutsController {
	return &CheckoutsController{
		catalog: catalog,
	}
}

// CheckOutBook assigns a book to a user, replacing any current holder.
// POST /books/:id/checkout/:user_id
func (controller *CheckoutsController) CheckOutBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	err := controller.catalog.CheckOutBook(c.Request.Context(), bookID, userID)
	respondMutation(c, err, "Book checked out successfully", nil, "Book or User")
}

// ReturnBook clears the holder of a book.
// POST /books/:id/return
func (controller *CheckoutsController) ReturnBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := controller.catalog.ReturnBook(c.Request.Context(), bookID)
	respondMutation(c, err, "Book returned successfully", nil, "Book")
}

// GetCheckedOutUsers lists each user holding at least one book.
// GET /checked-out-users
func (controller *CheckoutsController) GetCheckedOutUsers(c *gin.Context) {
	users, err := controller.catalog.ListCheckedOutUsers(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list checked out users")
		return
	}

	summaries := make([]entities.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, user.Summary())
	}
	c.JSON(http.StatusOK, gin.H{"checked_out_users": summaries})
}
