package sqlbuilder

import (
	"strings"
	"unicode"

	"pagekit/internal/tableconfig"
)

// SearchStrategy names the matching mode chosen for a title search.
// Exposed so callers can log and count strategy decisions.
type SearchStrategy string

const (
	SearchExact           SearchStrategy = "exact"
	SearchWildcard        SearchStrategy = "wildcard_like"
	SearchBooleanFullText SearchStrategy = "boolean_fulltext"
	SearchNaturalFullText SearchStrategy = "natural_fulltext"
	SearchMultiLike       SearchStrategy = "multi_like"
	SearchLike            SearchStrategy = "like"
)

// minNaturalTokenLen is the shortest single Latin token worth sending to the
// full-text index; anything shorter falls below typical ft_min_word_len
// settings and degrades to LIKE.
const minNaturalTokenLen = 4

// titleColumn is the column substring searches run against when the table
// has no FULLTEXT index.
const titleColumn = "title"

// TitleCondition is the predicate produced for one title-search input.
type TitleCondition struct {
	Clause   string
	Args     []any
	Strategy SearchStrategy
	FullText bool
}

// BuildTitleCondition picks a search strategy for the raw title input and
// renders the matching predicate. Decision order, first match wins:
//
//  1. quoted string            -> exact equality
//  2. contains * or ?          -> wildcard LIKE (*->%, ?->_)
//  3. multiple words           -> full text where capable, AND of LIKEs otherwise
//  4. single CJK token         -> boolean-mode prefix match where capable
//  5. longer Latin token       -> natural-language full text where capable
//  6. anything else            -> substring LIKE
//
// Explicit intents short-circuit; full text is only attempted where an index
// exists and the token shape makes it statistically worthwhile.
func BuildTitleCondition(raw string, cfg tableconfig.Config) TitleCondition {
	title := strings.TrimSpace(raw)
	if title == "" {
		return TitleCondition{}
	}

	if inner, ok := unquote(title); ok {
		return TitleCondition{
			Clause:   titleColumn + " = ?",
			Args:     []any{inner},
			Strategy: SearchExact,
		}
	}

	if strings.ContainsAny(title, "*?") {
		return TitleCondition{
			Clause:   titleColumn + " LIKE ?",
			Args:     []any{translateWildcards(title)},
			Strategy: SearchWildcard,
		}
	}

	words := strings.Fields(title)
	if len(words) >= 2 {
		if cfg.HasFullText() {
			if containsCJK(title) {
				return booleanFullText(words, cfg)
			}
			return TitleCondition{
				Clause:   matchClause(cfg) + " AGAINST (? IN NATURAL LANGUAGE MODE)",
				Args:     []any{strings.Join(words, " ")},
				Strategy: SearchNaturalFullText,
				FullText: true,
			}
		}
		return multiLike(words)
	}

	token := words[0]
	if cfg.HasFullText() {
		if containsCJK(token) {
			return booleanFullText([]string{token}, cfg)
		}
		if len(token) >= minNaturalTokenLen && containsLatinLetter(token) {
			return TitleCondition{
				Clause:   matchClause(cfg) + " AGAINST (? IN NATURAL LANGUAGE MODE)",
				Args:     []any{token},
				Strategy: SearchNaturalFullText,
				FullText: true,
			}
		}
	}

	return TitleCondition{
		Clause:   titleColumn + " LIKE ?",
		Args:     []any{"%" + escapeLike(token) + "%"},
		Strategy: SearchLike,
	}
}

// booleanFullText requires every word as a mandatory prefix token: +word*.
func booleanFullText(words []string, cfg tableconfig.Config) TitleCondition {
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, "+"+w+"*")
	}
	return TitleCondition{
		Clause:   matchClause(cfg) + " AGAINST (? IN BOOLEAN MODE)",
		Args:     []any{strings.Join(terms, " ")},
		Strategy: SearchBooleanFullText,
		FullText: true,
	}
}

// multiLike ANDs one substring LIKE per word.
func multiLike(words []string) TitleCondition {
	clauses := make([]string, 0, len(words))
	args := make([]any, 0, len(words))
	for _, w := range words {
		clauses = append(clauses, titleColumn+" LIKE ?")
		args = append(args, "%"+escapeLike(w)+"%")
	}
	return TitleCondition{
		Clause:   "(" + strings.Join(clauses, " AND ") + ")",
		Args:     args,
		Strategy: SearchMultiLike,
	}
}

func matchClause(cfg tableconfig.Config) string {
	cols := make([]string, 0, len(cfg.FullTextFields))
	for _, c := range cfg.FullTextFields {
		if ValidIdentifier(c) {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		cols = []string{titleColumn}
	}
	return "MATCH(" + strings.Join(cols, ", ") + ")"
}

// unquote strips one matching pair of surrounding quotes, signalling an
// exact-match intent.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	pairs := [][2]string{{`"`, `"`}, {`'`, `'`}, {"“", "”"}}
	for _, p := range pairs {
		if strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) && len(s) > len(p[0])+len(p[1]) {
			return s[len(p[0]) : len(s)-len(p[1])], true
		}
	}
	return "", false
}

// translateWildcards converts user wildcards to LIKE wildcards after
// escaping literal LIKE metacharacters.
func translateWildcards(s string) string {
	escaped := escapeLike(s)
	escaped = strings.ReplaceAll(escaped, "*", "%")
	return strings.ReplaceAll(escaped, "?", "_")
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// containsCJK reports whether s contains any Han, Hiragana, Katakana or
// Hangul rune. CJK text does not tokenize on spaces, which changes the
// full-text mode that can match it.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// containsLatinLetter reports whether s has at least one ASCII letter.
func containsLatinLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
