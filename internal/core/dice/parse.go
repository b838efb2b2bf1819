package dice

import (
	"strconv"
	"strings"
)

// ParseArgs converts raw roll-command tokens into a Request.
//
// Tokens are consumed strictly left to right:
//
//  1. The mandatory first token is the dice pool. A trailing
//     case-insensitive "e" sets Edge; the remainder must parse as an
//     integer. The parser applies no range validation to the pool.
//  2. Under SR5 only, a next token of all decimal digits is consumed as
//     the limit.
//  3. The next token, when present, is tried as the threshold. SR5 strips
//     one leading case-insensitive "t" first. All-digit tokens parse
//     directly; otherwise SR4 and SR5 resolve difficulty keywords from
//     their tables. An unrecognized keyword leaves the threshold absent
//     and the token unconsumed.
//  4. Remaining tokens join with single spaces to form the comment.
//
// A missing or non-numeric dice token fails with ErrMalformedArguments.
func ParseArgs(tokens []string, edition Edition) (Request, error) {
	if len(tokens) == 0 {
		return Request{}, ErrMalformedArguments
	}

	request := Request{}
	first := tokens[0]
	rest := tokens[1:]

	if n := len(first); n > 0 && (first[n-1] == 'e' || first[n-1] == 'E') {
		request.Edge = true
		first = first[:n-1]
	}
	pool, err := strconv.Atoi(first)
	if err != nil {
		return Request{}, ErrMalformedArguments
	}
	request.Pool = pool

	if edition == EditionSR5 && len(rest) > 0 && isDigits(rest[0]) {
		if limit, convErr := strconv.Atoi(rest[0]); convErr == nil {
			request.Limit = &limit
			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		token := rest[0]
		if edition == EditionSR5 && (strings.HasPrefix(token, "t") || strings.HasPrefix(token, "T")) {
			token = token[1:]
		}
		if isDigits(token) {
			if threshold, convErr := strconv.Atoi(token); convErr == nil {
				request.Threshold = &threshold
				rest = rest[1:]
			}
		} else if edition != EditionSR6 {
			if threshold, ok := thresholdTable(edition)[normalizeKeyword(token)]; ok {
				request.Threshold = &threshold
				rest = rest[1:]
			}
		}
	}

	request.Comment = strings.TrimSpace(strings.Join(rest, " "))
	return request, nil
}

// normalizeKeyword lower-cases a difficulty keyword and removes spaces
// before table lookup.
func normalizeKeyword(keyword string) string {
	return strings.ReplaceAll(strings.ToLower(keyword), " ", "")
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
