package handlers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/iamwavecut/warden/internal/db"
	wderrors "github.com/iamwavecut/warden/internal/errors"
	"github.com/iamwavecut/warden/internal/utils/text"
)

var (
	quotedPhrase = regexp.MustCompile(`"([^"]*)"`)
	smartQuotes  = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`)
)

// extractSetName accepts a sticker set name or an addstickers link and
// returns the lowercased set name.
func extractSetName(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.LastIndex(strings.ToLower(name), "addstickers/"); i >= 0 {
		name = name[i+len("addstickers/"):]
	}
	name, _, _ = strings.Cut(name, "?")
	name = strings.Trim(name, "/ ")
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}
	return strings.ToLower(name)
}

// parseBoundedInt reads a single integer argument in [0, max], max <= 0
// leaves it unbounded above.
func parseBoundedInt(raw string, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Wrapf(wderrors.ErrInvalidInput, "%q is not a number", strings.TrimSpace(raw))
	}
	if n < 0 || (max > 0 && n > max) {
		return 0, errors.Wrapf(wderrors.ErrInvalidInput, "%d is out of range", n)
	}
	return n, nil
}

type censorEntry struct {
	Word string
	Mode db.MatchMode
}

// parseCensorArgs reads quoted phrases as strict entries and every other
// word, comma or space separated, as a smart entry.
func parseCensorArgs(raw string) []censorEntry {
	raw = smartQuotes.Replace(raw)

	var entries []censorEntry
	seen := make(map[string]struct{})
	add := func(word string, mode db.MatchMode) {
		word = text.Normalize(word)
		if word == "" {
			return
		}
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		entries = append(entries, censorEntry{Word: word, Mode: mode})
	}

	for _, m := range quotedPhrase.FindAllStringSubmatch(raw, -1) {
		add(m[1], db.MatchStrict)
	}
	rest := quotedPhrase.ReplaceAllString(raw, " ")
	rest = strings.ReplaceAll(rest, `"`, " ")
	for _, word := range strings.FieldsFunc(rest, func(r rune) bool {
		return r == ',' || r == '،' || r == ' ' || r == '\n' || r == '\t'
	}) {
		add(word, db.MatchSmart)
	}
	return entries
}

// parseUncensorArg returns the normalized entry to remove, or all=true.
func parseUncensorArg(raw string) (word string, all bool) {
	raw = strings.TrimSpace(smartQuotes.Replace(raw))
	if strings.EqualFold(raw, "all") {
		return "", true
	}
	return text.Normalize(strings.Trim(raw, `"`)), false
}

// parseClearArgs returns the requested message count, defaultCount when the
// argument is missing or not a positive number, capped at maxCount.
func parseClearArgs(args string, defaultCount, maxCount int) int {
	count := defaultCount
	for _, field := range strings.Fields(args) {
		if n, err := strconv.Atoi(field); err == nil {
			if n > 0 {
				count = n
			}
			break
		}
	}
	return min(count, maxCount)
}

// parseClearExceptArgs splits "@user1 @user2 N" into lowercased usernames
// and the message count.
func parseClearExceptArgs(args string, defaultCount, maxCount int) ([]string, int) {
	var users []string
	for _, field := range strings.Fields(args) {
		if strings.HasPrefix(field, "@") && len(field) > 1 {
			users = append(users, strings.ToLower(field[1:]))
		}
	}
	return users, parseClearArgs(args, defaultCount, maxCount)
}
