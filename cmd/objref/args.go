package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/objref/dispatch"
)

// parseToken converts one command-line token to a Value.
//
// Integer literals become signed Integers and other numeric literals become
// Numbers. The prefixes f:, i:, u: and s: force Number, signed, unsigned
// and Text. Anything else is Text.
func parseToken(tok string) (dispatch.Value, error) {
	if prefix, rest, ok := strings.Cut(tok, ":"); ok && len(prefix) == 1 {
		switch prefix {
		case "f":
			f, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				return dispatch.Value{}, fmt.Errorf("token %q: %w", tok, err)
			}
			return dispatch.Number(f), nil
		case "i":
			n, err := strconv.ParseInt(rest, 0, 64)
			if err != nil {
				return dispatch.Value{}, fmt.Errorf("token %q: %w", tok, err)
			}
			return dispatch.Int(n), nil
		case "u":
			n, err := strconv.ParseUint(rest, 0, 64)
			if err != nil {
				return dispatch.Value{}, fmt.Errorf("token %q: %w", tok, err)
			}
			return dispatch.Uint(n), nil
		case "s":
			return dispatch.Text(rest), nil
		}
	}

	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return dispatch.Int(n), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return dispatch.Number(f), nil
	}
	return dispatch.Text(tok), nil
}

func parseTokens(toks []string) ([]dispatch.Value, error) {
	out := make([]dispatch.Value, 0, len(toks))
	for _, tok := range toks {
		v, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseLine splits a REPL line into keyword, arguments and output count.
// A trailing "=> N" requests N outputs; otherwise nout is -1.
func parseLine(line string) (keyword string, args []dispatch.Value, nout int, err error) {
	nout = -1
	if head, tail, ok := strings.Cut(line, "=>"); ok {
		n, perr := strconv.Atoi(strings.TrimSpace(tail))
		if perr != nil || n < 0 {
			return "", nil, 0, fmt.Errorf("invalid output count %q", strings.TrimSpace(tail))
		}
		line, nout = head, n
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, nout, nil
	}
	args, err = parseTokens(fields[1:])
	return fields[0], args, nout, err
}

// outputsFor resolves a requested output count of -1 to the command's own.
func outputsFor(set *dispatch.Set, keyword string, nout int) int {
	if nout >= 0 {
		return nout
	}
	if cmd, ok := set.Lookup(keyword); ok {
		return cmd.Outputs()
	}
	return 0
}

func formatValues(vals []dispatch.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}
