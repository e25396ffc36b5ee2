// Package script parses and runs line-oriented allocation scripts.
//
// A script is one command per line; blank lines and text after # are
// ignored:
//
//	init 4096
//	alloc a 100
//	alloc b 36
//	free a
//	dump
//
// Input may carry a UTF-8 or UTF-16 byte order mark.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var errSyntax = errors.New("script: syntax error")

// Command is one parsed script line.
type Command struct {
	Line int    // 1-based source line
	Op   Op     // Verb
	Name string // Variable name for alloc, free and offset
	Size int    // Byte count for init and alloc
}

func (c Command) String() string {
	switch c.Op {
	case OpInit:
		return fmt.Sprintf("%s %d", c.Op, c.Size)
	case OpAlloc:
		return fmt.Sprintf("%s %s %d", c.Op, c.Name, c.Size)
	case OpFree, OpOffset:
		return fmt.Sprintf("%s %s", c.Op, c.Name)
	default:
		return string(c.Op)
	}
}

// ParseError reports a malformed line.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("script: line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func (e *ParseError) Unwrap() error { return errSyntax }

// IsSyntax reports whether err came from a malformed script line.
func IsSyntax(err error) bool { return errors.Is(err, errSyntax) }

// Parse reads a script from r.
func Parse(r io.Reader) ([]Command, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, dec))
	scanner.Buffer(make([]byte, 0, 4096), ScannerMaxLineSize)

	var cmds []Command
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, CommentPrefix); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		cmd, err := parseLine(line, fields)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("script: read: %w", err)
	}
	return cmds, nil
}

// ParseString is Parse over a string.
func ParseString(s string) ([]Command, error) {
	return Parse(strings.NewReader(s))
}

func parseLine(line int, fields []string) (Command, error) {
	text := strings.Join(fields, " ")
	fail := func(msg string) (Command, error) {
		return Command{}, &ParseError{Line: line, Text: text, Msg: msg}
	}

	op := Op(strings.ToLower(fields[0]))
	want, ok := arity[op]
	if !ok {
		return fail("unknown command")
	}
	args := fields[1:]
	if len(args) != want {
		return fail(fmt.Sprintf("%s takes %d argument(s), got %d", op, want, len(args)))
	}

	cmd := Command{Line: line, Op: op}
	switch op {
	case OpInit:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fail("size is not an integer")
		}
		cmd.Size = n
	case OpAlloc:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fail("size is not an integer")
		}
		cmd.Name, cmd.Size = args[0], n
	case OpFree, OpOffset:
		cmd.Name = args[0]
	}
	return cmd, nil
}
