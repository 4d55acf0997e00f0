package models

// Field identifies one of the logical columns a book report is built from.
type Field string

const (
	FieldStudentID Field = "studentId"
	FieldBookTitle Field = "bookTitle"
	FieldAuthor    Field = "author"
	FieldReview    Field = "review"
)

// RequiredFields lists every field a row must provide, in display order.
var RequiredFields = []Field{FieldStudentID, FieldBookTitle, FieldAuthor, FieldReview}

// BookReport represents one student's submitted book report row
type BookReport struct {
	StudentID string `json:"studentId"`
	BookTitle string `json:"bookTitle"`
	Author    string `json:"author"`
	Review    string `json:"review"`
}

// ColumnMapping maps a logical field to the literal header it was found under
type ColumnMapping map[Field]string

// BookVerification is the outcome of checking a report against the book catalog.
// When Found is false every other field is empty.
type BookVerification struct {
	Found         bool   `json:"found"`
	MatchedTitle  string `json:"matchedTitle,omitempty"`
	MatchedAuthor string `json:"matchedAuthor,omitempty"`
	Description   string `json:"description,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	Thumbnail     string `json:"thumbnail,omitempty"`
}

// Verdict is the three-level judgment of whether the student read the book
type Verdict string

const (
	VerdictHigh   Verdict = "high"
	VerdictMedium Verdict = "medium"
	VerdictLow    Verdict = "low"
)

// ReviewAnalysis is the AI judgment for one review
type ReviewAnalysis struct {
	Verdict   Verdict `json:"verdict"`
	Reasoning string  `json:"reasoning"`
}

// Status of a single verification result
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// AnalysisResult combines a report with its verification outcome and, when
// requested individually, the review analysis.
type AnalysisResult struct {
	Report         BookReport       `json:"report"`
	Verification   BookVerification `json:"verification"`
	ReviewAnalysis *ReviewAnalysis  `json:"reviewAnalysis,omitempty"`
	Status         Status           `json:"status"`
	ErrorMessage   string           `json:"errorMessage,omitempty"`
}

// ParseResult is the outcome of parsing an uploaded spreadsheet
type ParseResult struct {
	Success bool         `json:"success"`
	Reports []BookReport `json:"reports"`
	Errors  []string     `json:"errors"`

	// Set when header auto-mapping failed and the user must map columns manually
	NeedsMapping    bool          `json:"needsMapping,omitempty"`
	DetectedHeaders []string      `json:"detectedHeaders,omitempty"`
	MissingFields   []Field       `json:"missingFields,omitempty"`
	PartialMapping  ColumnMapping `json:"partialMapping,omitempty"`
}

// Progress reports how far a verification batch has advanced
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}
