package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrlokans/library/internal/entities"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown snapshot format %q (expected csv or json)", s)
	}
}

var csvHeader = []string{"id", "title", "author", "holder_id"}

func writeCSV(w io.Writer, books []entities.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, book := range books {
		holder := ""
		if book.HolderID != nil {
			holder = strconv.FormatUint(uint64(*book.HolderID), 10)
		}
		record := []string{strconv.FormatUint(uint64(book.ID), 10), book.Title, book.Author, holder}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonSnapshot struct {
	GeneratedAt string         `json:"generated_at"`
	Count       int            `json:"count"`
	Books       []jsonBookItem `json:"books"`
}

type jsonBookItem struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	HolderID *uint  `json:"holder_id"`
}

func writeJSON(w io.Writer, books []entities.Book, now time.Time) error {
	doc := jsonSnapshot{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Count:       len(books),
		Books:       make([]jsonBookItem, 0, len(books)),
	}
	for _, book := range books {
		doc.Books = append(doc.Books, jsonBookItem{
			ID:       book.ID,
			Title:    book.Title,
			Author:   book.Author,
			HolderID: book.HolderID,
		})
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
