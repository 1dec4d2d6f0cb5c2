package heal

import "strings"

// FindTestBlock locates the source span of `test('name', ...) => { ... });`
// for the given test name inside a generated script, by brace-balance
// scanning rather than a regex — nested callbacks, template literals and
// escaped quotes inside the test body all defeat a line-oriented regex, but
// a brace counter handles them uniformly once string/template literals are
// tracked. Returns the half-open byte range [start, end) covering the full
// statement including the trailing `});\n`, and false if name isn't found.
func FindTestBlock(script, name string) (start, end int, ok bool) {
	needle := "test('" + escapeSingle(name) + "'"
	altNeedle := `test("` + name + `"`

	idx := strings.Index(script, needle)
	if idx < 0 {
		idx = strings.Index(script, altNeedle)
	}
	if idx < 0 {
		return 0, 0, false
	}

	arrow := strings.Index(script[idx:], "=>")
	if arrow < 0 {
		return 0, 0, false
	}
	braceStart := strings.IndexByte(script[idx+arrow:], '{')
	if braceStart < 0 {
		return 0, 0, false
	}
	braceStart += idx + arrow

	depth := 0
	inString := false
	var quote byte
	escaped := false

	i := braceStart
	for ; i < len(script); i++ {
		c := script[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			if c == '\\' {
				escaped = true
			} else if c == quote {
				inString = false
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			inString = true
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i + 1
				// consume a trailing ");" and newline if present
				for end < len(script) && (script[end] == ')' || script[end] == ';') {
					end++
				}
				for end < len(script) && script[end] == '\n' {
					end++
				}
				return idx, end, true
			}
		}
	}
	return 0, 0, false
}

// ReplaceTestBlock substitutes the test named name's block in script with
// replacement, leaving everything else (other tests, the describe
// wrapper, imports) untouched. If the block can't be found, script is
// returned unchanged and ok is false — callers should treat that as a
// tier-2 failure and escalate.
func ReplaceTestBlock(script, name, replacement string) (result string, ok bool) {
	start, end, found := FindTestBlock(script, name)
	if !found {
		return script, false
	}
	return script[:start] + replacement + script[end:], true
}

func escapeSingle(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
