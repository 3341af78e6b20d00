package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookbatch/internal/database/books"
	"bookbatch/internal/exporters"
)

// BookExportController streams the stored books back out as CSV.
type BookExportController struct {
	books    *books.Repository
	exporter *exporters.CSVExporter
}

func NewBookExportController(bookRepo *books.Repository, exporter *exporters.CSVExporter) *BookExportController {
	return &BookExportController{
		books:    bookRepo,
		exporter: exporter,
	}
}

func (c *BookExportController) Export(ctx *gin.Context) {
	allBooks, err := c.books.GetAll()
	if err != nil {
		respondInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", `attachment; filename="books.csv"`)
	ctx.Status(http.StatusOK)

	if err := c.exporter.Export(ctx.Writer, allBooks); err != nil {
		// Headers are already out; all we can do is log.
		log.Printf("CSV export failed mid-stream: %v", err)
	}
}
