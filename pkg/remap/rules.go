// Package remap compiles block remapping rules and applies them to packed
// section arrays.
package remap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mc-Fr/Convertisseur/pkg/block"
	"github.com/Mc-Fr/Convertisseur/pkg/registry"
)

// RulesFile is the rule file name expected inside a rules directory.
const RulesFile = "ids.cfg"

const wildcard = "*"

var (
	rulePattern  = regexp.MustCompile(`^(\d+|[\w.-]+:[\w.-]+)(?:/(\d+))?->(?:(\d+|[\w.-]+:[\w.-]+)(?:/(\d+))?|(\*))$`)
	numberTokens = regexp.MustCompile(`^\d+$`)
)

// ParseError reports a rule file line that could not be compiled.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d", e.Msg, e.Line)
}

// Table maps old block ids to new ones. Keys always carry an explicit
// metadata value. It is never modified after Compile returns.
type Table map[block.ID]block.ID

// Lookup returns the replacement for id.
func (t Table) Lookup(id block.ID) (block.ID, bool) {
	v, ok := t[id]
	return v, ok
}

// CompileFile compiles the rule file at path.
func CompileFile(path string, names *registry.Table) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Compile(f, names)
}

// Compile reads one rule per line from r. Blank lines and text after '#'
// are ignored. Symbolic ids are resolved through names; a nil names table
// only accepts numeric ids. Later rules overwrite earlier ones for the
// same key.
func Compile(r io.Reader, names *registry.Table) (Table, error) {
	table := make(Table)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if err := compileLine(table, text, line, names); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: line + 1, Msg: "line too long"}
		}
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return table, nil
}

func compileLine(table Table, text string, line int, names *registry.Table) error {
	m := rulePattern.FindStringSubmatch(text)
	if m == nil {
		return &ParseError{Line: line, Msg: "syntax error"}
	}

	srcID, err := resolve(m[1], line, names)
	if err != nil {
		return err
	}
	srcMeta, err := meta(m[2], line)
	if err != nil {
		return err
	}

	if m[5] == wildcard {
		dst := block.ID{ID: 0, Meta: 0}
		if srcMeta == block.AnyMeta {
			for i := 0; i <= block.MaxMeta; i++ {
				table[block.ID{ID: srcID, Meta: i}] = dst
			}
		} else {
			table[block.ID{ID: srcID, Meta: srcMeta}] = dst
		}
		return nil
	}

	dstID, err := resolve(m[3], line, names)
	if err != nil {
		return err
	}
	dstMeta, err := meta(m[4], line)
	if err != nil {
		return err
	}

	switch {
	case srcMeta == block.AnyMeta && dstMeta == block.AnyMeta:
		for i := 0; i <= block.MaxMeta; i++ {
			table[block.ID{ID: srcID, Meta: i}] = block.ID{ID: dstID, Meta: i}
		}
	case srcMeta == block.AnyMeta:
		for i := 0; i <= block.MaxMeta; i++ {
			table[block.ID{ID: srcID, Meta: i}] = block.ID{ID: dstID, Meta: dstMeta}
		}
	case dstMeta == block.AnyMeta:
		return &ParseError{Line: line, Msg: "inconsistent rule"}
	default:
		table[block.ID{ID: srcID, Meta: srcMeta}] = block.ID{ID: dstID, Meta: dstMeta}
	}
	return nil
}

// resolve turns a numeric or symbolic token into a block identifier.
func resolve(token string, line int, names *registry.Table) (int, error) {
	if numberTokens.MatchString(token) {
		id, err := strconv.Atoi(token)
		if err != nil || id > block.MaxID {
			return 0, &ParseError{Line: line, Msg: fmt.Sprintf("id %s out of range", token)}
		}
		return id, nil
	}
	if names != nil {
		if id, ok := names.ID(token); ok {
			if id < 0 || id > block.MaxID {
				return 0, &ParseError{Line: line, Msg: fmt.Sprintf("id %d of %s out of range", id, token)}
			}
			return id, nil
		}
	}
	return 0, &ParseError{Line: line, Msg: fmt.Sprintf("unknown id '%s'", token)}
}

// meta parses an optional metadata group. An empty group means any.
func meta(group string, line int) (int, error) {
	if group == "" {
		return block.AnyMeta, nil
	}
	v, err := strconv.Atoi(group)
	if err != nil || v > block.MaxMeta {
		return 0, &ParseError{Line: line, Msg: fmt.Sprintf("metadata %s out of range", group)}
	}
	return v, nil
}
