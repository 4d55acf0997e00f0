package spreadsheet

import "github.com/readornot/readornot/internal/models"

// AutoMap matches detected headers against the alias table. The first header
// matching a field claims it; later headers cannot reassign a claimed field.
// missing holds the fields no header matched, in required-field order.
func AutoMap(headers []string) (mapping models.ColumnMapping, missing []models.Field) {
	mapping = models.ColumnMapping{}

	for _, header := range headers {
		field, ok := mapHeader(header)
		if !ok {
			continue
		}
		if _, claimed := mapping[field]; claimed {
			continue
		}
		mapping[field] = header
	}

	for _, field := range models.RequiredFields {
		if _, ok := mapping[field]; !ok {
			missing = append(missing, field)
		}
	}
	return mapping, missing
}

// Parse decodes the file, auto-maps its headers and extracts reports. When
// one or more fields cannot be mapped automatically the result asks for a
// manual mapping instead of failing.
func Parse(data []byte, filename string) models.ParseResult {
	table, err := ReadTable(data, filename)
	if err != nil {
		return models.ParseResult{Errors: []string{err.Error()}}
	}

	mapping, missing := AutoMap(table.Headers)
	if len(missing) > 0 {
		return models.ParseResult{
			NeedsMapping:    true,
			DetectedHeaders: table.Headers,
			MissingFields:   missing,
			PartialMapping:  mapping,
		}
	}

	return Extract(table, mapping)
}
