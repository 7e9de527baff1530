// Package titles turns free-form catalog titles into provider search strings
// and cache keys.
package titles

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

var (
	bracketedRegex = regexp.MustCompile(`\s*[\(\[\{][^\(\)\[\]\{\}]*[\)\]\}]`)
	// An opening bracket that is never closed swallows the rest of the title.
	unclosedRegex = regexp.MustCompile(`\s*[\(\[\{][^\)\]\}]*$`)

	// Type annotations only count after a dash or pipe so that titles such as
	// "Batman: The Movie" survive.
	typeSuffixRegex = regexp.MustCompile(`(?i)\s*[-–—|]\s*(movie|film|series|tv series|tv show|show|mini-?series|limited series|dizi|dizisi|anime)\s*$`)

	// Season suffixes must be separated from the title by whitespace or a
	// separator so that names like "Mars24" keep their trailing digits.
	seasonSuffixRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:\s+|\s*[-–—:|,]\s*)(season|sezon|series)\s*\d{1,3}\s*$`),
		regexp.MustCompile(`(?i)(?:\s+|\s*[-–—:|,]\s*)\d{1,3}\s*\.?\s*(season|sezon)\s*$`),
		regexp.MustCompile(`(?i)(?:\s+|\s*[-–—:|,]\s*)\d{1,3}(st|nd|rd|th)\s+season\s*$`),
		regexp.MustCompile(`(?i)(?:\s+|\s*[-–—:|,]\s*)(season|sezon)\s+(one|two|three|four|five|six|seven|eight|nine|ten|bir|iki|üç|dört|beş)\s*$`),
		regexp.MustCompile(`(?i)(?:\s+|\s*[-–—:|,]\s*)s\d{1,2}\s*$`),
	}

	spacesRegex = regexp.MustCompile(`\s+`)

	folder = cases.Fold()
)

const danglingSeparators = " -–—:|,/"

// Normalize reduces a raw catalog title to the string used to query the
// provider. It never fails; an empty title yields an empty string.
func Normalize(raw string, kind models.ItemKind) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	title := norm.NFKC.String(raw)
	title = bracketedRegex.ReplaceAllString(title, " ")
	title = unclosedRegex.ReplaceAllString(title, "")
	title = tidy(title)

	stripSeasons := kind != models.KindMovie
	for {
		before := title
		title = tidy(typeSuffixRegex.ReplaceAllString(title, ""))
		if stripSeasons {
			for _, re := range seasonSuffixRegexes {
				if stripped := tidy(re.ReplaceAllString(title, "")); stripped != "" {
					title = stripped
				}
			}
		}
		if title == before {
			break
		}
	}

	return title
}

// Key returns the resolution cache key for a title. Titles that normalize to
// the same string, modulo case, diacritics and punctuation, share a key.
// Season stubs share the key of their series.
func Key(raw string, kind models.ItemKind) string {
	folded := Fold(Normalize(raw, kind))
	if folded == "" {
		return ""
	}
	return "title:" + string(kind.LookupKind()) + ":" + folded
}

// Fold transliterates to ASCII, case-folds and drops punctuation.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "&", " and ")
	s = folder.String(unidecode.Unidecode(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tidy(s string) string {
	s = spacesRegex.ReplaceAllString(s, " ")
	return strings.Trim(s, danglingSeparators)
}
