// Package transcript pulls summarizable text out of a video watch page: the
// rendered transcript when the page shows one, otherwise the description.
package transcript

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/ytreader/internal/dom"
)

// ErrNoText is returned when neither a transcript nor a usable description
// is present.
var ErrNoText = errors.New("transcript: no transcript or description found")

// minDescriptionLen is the length a description candidate must exceed.
const minDescriptionLen = 30

const segmentSelector = "ytd-transcript-segment-renderer .segment-text"

var descriptionSelectors = []string{
	"ytd-video-secondary-info-renderer #description yt-formatted-string",
	"#description",
	"ytd-expander[collapsed] #description",
	"#description-inline-expander",
}

// Source names where extracted text came from.
type Source string

const (
	SourceTranscript  Source = "transcript"
	SourceDescription Source = "description"
	SourceMeta        Source = "meta"
	SourceBody        Source = "body"
	SourceArticle     Source = "article"
)

// Result is the extracted text and its origin.
type Result struct {
	Text   string
	Source Source
}

// FromPage returns the joined transcript segments, or the first description
// candidate longer than 30 characters.
func FromPage(doc dom.Document) (Result, error) {
	segments, err := doc.QueryAll(segmentSelector)
	if err != nil {
		return Result{}, err
	}
	if len(segments) > 0 {
		parts := make([]string, 0, len(segments))
		for _, s := range segments {
			if t := Normalize(s.Text()); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			return Result{Text: strings.Join(parts, " "), Source: SourceTranscript}, nil
		}
	}

	for _, sel := range descriptionSelectors {
		el, err := doc.Query(sel)
		if err != nil {
			return Result{}, err
		}
		if el == nil {
			continue
		}
		if t := Normalize(el.Text()); len([]rune(t)) > minDescriptionLen {
			return Result{Text: t, Source: SourceDescription}, nil
		}
	}
	return Result{}, ErrNoText
}

// Normalize composes text to NFC and collapses whitespace runs to single
// spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
