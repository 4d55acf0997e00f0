package spreadsheet

import (
	"regexp"
	"strings"

	"github.com/readornot/readornot/internal/models"
)

// columnAliases lists the header spellings recognized for each logical field.
// Matching is case-insensitive and ignores whitespace.
var columnAliases = map[models.Field][]string{
	models.FieldStudentID: {"학번", "번호", "학생번호", "출석번호", "id", "student_id", "studentid"},
	models.FieldBookTitle: {"책제목", "제목", "도서명", "책이름", "도서제목", "title", "book_title", "booktitle"},
	models.FieldAuthor:    {"작가", "저자", "글쓴이", "작성자", "지은이", "author", "writer"},
	models.FieldReview:    {"감상문", "독후감", "감상평", "내용", "본문", "서평", "review", "content", "report"},
}

// fieldLabels are the labels used in row-level validation messages.
var fieldLabels = map[models.Field]string{
	models.FieldStudentID: "학번",
	models.FieldBookTitle: "책제목",
	models.FieldAuthor:    "작가",
	models.FieldReview:    "감상문",
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)
var spacePattern = regexp.MustCompile(`\s+`)

// normalize strips markup and whitespace and lowercases, so that header and
// alias comparison ignores formatting differences.
func normalize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// mapHeader returns the logical field a literal header corresponds to, if any.
func mapHeader(header string) (models.Field, bool) {
	normalized := normalize(header)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if normalized == normalize(alias) {
				return field, true
			}
		}
	}
	return "", false
}
