package model

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	pgnFENTag      = regexp.MustCompile(`\[FEN\s+"([^"]+)"\]`)
	pgnTags        = regexp.MustCompile(`(?s)\[.*?\]`)
	pgnComments    = regexp.MustCompile(`(?s)\{.*?\}`)
	pgnLineComment = regexp.MustCompile(`;[^\n]*`)
	pgnVariation   = regexp.MustCompile(`\([^()]*\)`)
	pgnMoveNumber  = regexp.MustCompile(`\d+\.+\s*`)
	pgnAnnotation  = regexp.MustCompile(`\$\d+`)
)

var pgnResults = map[string]bool{"1-0": true, "0-1": true, "1/2-1/2": true, "*": true}

// ParsePGN returns the starting FEN (the FEN tag, or the standard start) and the SAN tokens.
// Tags, comments, variations, move numbers and result tokens are dropped.
func ParsePGN(text string) (startFEN string, sans []string) {
	startFEN = StartFEN
	if m := pgnFENTag.FindStringSubmatch(text); m != nil {
		startFEN = m[1]
	}

	body := pgnTags.ReplaceAllString(text, " ")
	body = pgnComments.ReplaceAllString(body, " ")
	body = pgnLineComment.ReplaceAllString(body, " ")
	// Variations nest, so strip innermost ones until none remain.
	for pgnVariation.MatchString(body) {
		body = pgnVariation.ReplaceAllString(body, " ")
	}
	body = pgnMoveNumber.ReplaceAllString(body, " ")
	body = pgnAnnotation.ReplaceAllString(body, " ")

	for _, tok := range strings.Fields(body) {
		if pgnResults[tok] {
			continue
		}
		sans = append(sans, tok)
	}
	return startFEN, sans
}

// GeneratePGN numbers the SAN history in pairs and appends the result token. A game that
// did not start from the standard position carries SetUp and FEN tags.
func GeneratePGN(history []string, status GameStatus, startFEN string) string {
	var sb strings.Builder
	firstTurn := White
	if startFEN != "" && PositionKey(startFEN) != PositionKey(StartFEN) {
		fmt.Fprintf(&sb, "[SetUp \"1\"]\n[FEN \"%s\"]\n\n", startFEN)
		if fields := strings.Fields(startFEN); len(fields) > 1 && fields[1] == "b" {
			firstTurn = Black
		}
	}

	i, num := 0, 1
	if firstTurn == Black && len(history) > 0 {
		fmt.Fprintf(&sb, "%d... %s ", num, history[0])
		i, num = 1, 2
	}
	for ; i < len(history); i, num = i+2, num+1 {
		fmt.Fprintf(&sb, "%d. %s ", num, history[i])
		if i+1 < len(history) {
			fmt.Fprintf(&sb, "%s ", history[i+1])
		}
	}
	sb.WriteString(status.Result())
	return sb.String()
}
