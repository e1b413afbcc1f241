package migration

import "strings"

// splitState is the lexical context of the splitter scan. States are
// mutually exclusive; at most one is active at any position.
type splitState int

const (
	stateNone splitState = iota
	stateLineComment
	stateBlockComment
	stateSingleQuoted
	stateDoubleQuoted
	stateBacktickQuoted
)

// SplitStatements splits raw SQL text into individual executable statements.
//
// Statements are delimited by semicolons that appear outside quoted strings
// and outside comments. "--" line comments are discarded up to the newline
// (the newline itself is kept so statements separated only by comment lines
// do not merge), "/* */" block comments are discarded entirely, and single,
// double, and backtick quoted strings may contain semicolons and comment
// markers without effect. A quote preceded by a backslash does not open or
// close a string. The final statement does not need a trailing semicolon.
//
// Returned statements are whitespace-trimmed and non-empty, in input order.
// The scan is a single linear pass over the text.
func SplitStatements(text string) []string {
	var (
		statements []string
		buf        strings.Builder
		state      = stateNone
	)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch state {
		case stateLineComment:
			// Comment content is dropped; the terminating newline is kept.
			if ch == '\n' {
				buf.WriteRune('\n')
				state = stateNone
			}

		case stateBlockComment:
			if ch == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				i++
				state = stateNone
			}

		case stateSingleQuoted:
			buf.WriteRune(ch)
			if ch == '\'' && !escaped(runes, i) {
				state = stateNone
			}

		case stateDoubleQuoted:
			buf.WriteRune(ch)
			if ch == '"' && !escaped(runes, i) {
				state = stateNone
			}

		case stateBacktickQuoted:
			buf.WriteRune(ch)
			if ch == '`' && !escaped(runes, i) {
				state = stateNone
			}

		case stateNone:
			switch {
			case ch == '-' && i+1 < len(runes) && runes[i+1] == '-':
				i++
				state = stateLineComment
			case ch == '/' && i+1 < len(runes) && runes[i+1] == '*':
				i++
				state = stateBlockComment
			case ch == '\'' && !escaped(runes, i):
				buf.WriteRune(ch)
				state = stateSingleQuoted
			case ch == '"' && !escaped(runes, i):
				buf.WriteRune(ch)
				state = stateDoubleQuoted
			case ch == '`' && !escaped(runes, i):
				buf.WriteRune(ch)
				state = stateBacktickQuoted
			case ch == ';':
				if stmt := strings.TrimSpace(buf.String()); stmt != "" {
					statements = append(statements, stmt)
				}
				buf.Reset()
			default:
				buf.WriteRune(ch)
			}
		}
	}

	// A final statement without a trailing semicolon is still a statement.
	if stmt := strings.TrimSpace(buf.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// escaped reports whether the rune at index i is immediately preceded by a
// backslash. The check is one rune deep; backslash pairs are not collapsed.
func escaped(runes []rune, i int) bool {
	return i > 0 && runes[i-1] == '\\'
}
