// Package validate performs structural checks on generated Manim
// scripts before they are handed to the renderer. It is not a Python
// parser; it catches the mistakes code generation can realistically
// make: unbalanced brackets, unterminated strings, and missing Manim
// boilerplate.
package validate

import "fmt"

// Error describes a single validation failure with its location.
type Error struct {
	Line    int // 1-based, 0 when the issue has no specific line
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Script validates a full Manim script. It returns the first problem
// found, or nil when the script passes all checks.
func Script(code string) error {
	if err := structure(code); err != nil {
		return err
	}
	if !containsOutsideStrings(code, "from manim import") && !containsOutsideStrings(code, "import manim") {
		return &Error{Message: "missing Manim import; script must include 'from manim import *' or 'import manim'"}
	}
	if containsOutsideStrings(code, "class") && containsOutsideStrings(code, "Scene") {
		if !containsOutsideStrings(code, "def construct") {
			return &Error{Message: "Scene class must define a 'construct' method"}
		}
	}
	return nil
}

// Fragment validates a scene-body code fragment, which carries no
// imports or class scaffolding of its own.
func Fragment(code string) error {
	return structure(code)
}

type bracket struct {
	ch   byte
	line int
}

// structure scans the code once, tracking string and comment state,
// and reports unbalanced brackets or unterminated strings.
func structure(code string) error {
	var (
		stack     []bracket
		line      = 1
		inString  bool
		quote     byte
		triple    bool
		quoteLine int
	)

	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == '\n' {
			if inString && !triple {
				return &Error{Line: quoteLine, Message: "unterminated string literal"}
			}
			line++
			continue
		}

		if inString {
			switch {
			case c == '\\':
				i++ // skip escaped char
			case c == quote && triple && i+2 < len(code) && code[i+1] == quote && code[i+2] == quote:
				inString = false
				i += 2
			case c == quote && !triple:
				inString = false
			}
			continue
		}

		switch c {
		case '#':
			for i < len(code) && code[i] != '\n' {
				i++
			}
			line++
		case '\'', '"':
			inString = true
			quote = c
			quoteLine = line
			triple = i+2 < len(code) && code[i+1] == c && code[i+2] == c
			if triple {
				i += 2
			}
		case '(', '[', '{':
			stack = append(stack, bracket{ch: c, line: line})
		case ')', ']', '}':
			if len(stack) == 0 {
				return &Error{Line: line, Message: fmt.Sprintf("unmatched %q", string(c))}
			}
			top := stack[len(stack)-1]
			if closerFor(top.ch) != c {
				return &Error{Line: line, Message: fmt.Sprintf("mismatched %q, expected %q opened on line %d", string(c), string(closerFor(top.ch)), top.line)}
			}
			stack = stack[:len(stack)-1]
		}
	}

	if inString {
		return &Error{Line: quoteLine, Message: "unterminated string literal"}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return &Error{Line: top.line, Message: fmt.Sprintf("unclosed %q", string(top.ch))}
	}
	return nil
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

// containsOutsideStrings reports whether needle appears in code in a
// position that is not inside a string literal or comment.
func containsOutsideStrings(code, needle string) bool {
	var (
		inString bool
		quote    byte
		triple   bool
	)
	for i := 0; i < len(code); i++ {
		c := code[i]
		if inString {
			switch {
			case c == '\\':
				i++
			case c == quote && triple && i+2 < len(code) && code[i+1] == quote && code[i+2] == quote:
				inString = false
				i += 2
			case c == quote && !triple:
				inString = false
			case c == '\n' && !triple:
				inString = false
			}
			continue
		}
		switch c {
		case '#':
			for i < len(code) && code[i] != '\n' {
				i++
			}
		case '\'', '"':
			inString = true
			quote = c
			triple = i+2 < len(code) && code[i+1] == c && code[i+2] == c
			if triple {
				i += 2
			}
		default:
			if c == needle[0] && i+len(needle) <= len(code) && code[i:i+len(needle)] == needle {
				return true
			}
		}
	}
	return false
}
