package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
)

type BooksController struct {
	catalog BookCatalog
}

func NewBooksController(catalog BookCatalog) *BooksController {
	return &BooksController{
		catalog: catalog,
	}
}

type addBookRequest struct {
	Title  string `form:"title" json:"title"`
	Author string `form:"author" json:"author"`
}

// editBookRequest leaves a field nil when the caller did not send it.
type editBookRequest struct {
	Title  *string `form:"title" json:"title"`
	Author *string `form:"author" json:"author"`
}

// bookDetail is a book with its holder. Listings use entities.BookSummary.
type bookDetail struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	HolderID *uint  `json:"holder_id"`
}

func newBookDetail(book *entities.Book) bookDetail {
	return bookDetail{ID: book.ID, Title: book.Title, Author: book.Author, HolderID: book.HolderID}
}

func bookSummaries(books []entities.Book) []entities.BookSummary {
	summaries := make([]entities.BookSummary, 0, len(books))
	for _, book := range books {
		summaries = append(summaries, book.Summary())
	}
	return summaries
}

// AddBook creates a book from title and author.
// POST /books
func (controller *BooksController) AddBook(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	book, err := controller.catalog.AddBook(c.Request.Context(), req.Title, req.Author)
	var data any
	if book != nil {
		data = newBookDetail(book)
	}
	respondMutation(c, err, "Book added successfully", data, "Book")
}

// DeleteBook removes a book.
// DELETE /books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := controller.catalog.DeleteBook(c.Request.Context(), bookID)
	respondMutation(c, err, "Book deleted successfully", nil, "Book")
}

// EditBook updates title and/or author. Omitted fields are kept.
// PUT /books/:id
func (controller *BooksController) EditBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req editBookRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	book, err := controller.catalog.EditBook(c.Request.Context(), bookID, catalog.BookUpdate{
		Title:  req.Title,
		Author: req.Author,
	})
	var data any
	if book != nil {
		data = newBookDetail(book)
	}
	respondMutation(c, err, "Book edited successfully", data, "Book")
}

// GetBook returns one book including its holder.
// GET /books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.GetBook(c.Request.Context(), bookID)
	if err != nil {
		respondCatalogError(c, err, "Book", "get book")
		return
	}
	c.JSON(http.StatusOK, newBookDetail(book))
}

// GetAllBooks lists every book.
// GET /books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.catalog.ListAllBooks(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": bookSummaries(books), "count": len(books)})
}
