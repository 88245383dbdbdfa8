package extractor

import (
	"strings"

	"github.com/julianstephens/jadwal/internal/models"
)

type keyword[T any] struct {
	words []string
	value T
}

// Checked in order; the first keyword found in the cell wins.
var classTypeKeywords = []keyword[models.ClassType]{
	{words: []string{"نظري", "theoretical"}, value: models.ClassTheoretical},
	{words: []string{"عملي", "practical"}, value: models.ClassPractical},
	{words: []string{"تمرين", "exercise"}, value: models.ClassExercise},
}

var statusKeywords = []keyword[models.Status]{
	{words: []string{"مغلقة", "closed"}, value: models.StatusClosed},
	{words: []string{"مفتوحة", "open"}, value: models.StatusOpen},
}

// ClassifyClassType maps the activity cell onto a class type. Text matching
// none of the known words yields "".
func ClassifyClassType(text string) models.ClassType {
	return classify(text, classTypeKeywords)
}

// ClassifyStatus maps the status cell onto open/closed, or "" when unknown.
func ClassifyStatus(text string) models.Status {
	return classify(text, statusKeywords)
}

func classify[T any](text string, keywords []keyword[T]) T {
	folded := strings.ToLower(cleanText(text))
	for _, kw := range keywords {
		for _, word := range kw.words {
			if strings.Contains(folded, word) {
				return kw.value
			}
		}
	}
	var zero T
	return zero
}

var invisibleReplacer = strings.NewReplacer(
	"\u200e", "", // left-to-right mark
	"\u200f", "", // right-to-left mark
	"\u00a0", " ",
	"\u0640", "", // tatweel
)

// cleanText drops direction marks and collapses runs of whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(invisibleReplacer.Replace(s)), " ")
}
