package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/readornot/readornot/internal/models"
)

// headerRowOffset converts a zero-based data row index into the row number a
// user sees in their spreadsheet program (header occupies row 1).
const headerRowOffset = 2

// Extract applies a complete column mapping to the table's rows. Rows with an
// empty required field are dropped and reported individually; the remaining
// rows are still extracted.
func Extract(table *Table, mapping models.ColumnMapping) models.ParseResult {
	var (
		reports []models.BookReport
		errors  []string
	)

	for i, row := range table.Rows {
		values := make(map[models.Field]string, len(models.RequiredFields))
		for field, header := range mapping {
			values[field] = strings.TrimSpace(row[header])
		}

		rowValid := true
		for _, field := range models.RequiredFields {
			if values[field] == "" {
				errors = append(errors, fmt.Sprintf("%d행: %s이 비어있습니다.", i+headerRowOffset, fieldLabels[field]))
				rowValid = false
				break
			}
		}
		if !rowValid {
			continue
		}

		reports = append(reports, models.BookReport{
			StudentID: values[models.FieldStudentID],
			BookTitle: values[models.FieldBookTitle],
			Author:    values[models.FieldAuthor],
			Review:    values[models.FieldReview],
		})
	}

	return models.ParseResult{
		Success: len(reports) > 0,
		Reports: reports,
		Errors:  errors,
	}
}
