package main

import "errors"

// errMsgParse is returned for lines that violate the RFC message grammar.
var errMsgParse = errors.New("parser: syntax error in message")

// Tabs are not considered white space anywhere in the grammar.
func skipSpaces(buf []byte, i int) int {
	for i < len(buf) && buf[i] == ' ' {
		i++
	}
	return i
}

func skipNonSpaces(buf []byte, i int) int {
	for i < len(buf) && buf[i] != ' ' {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// readParams tokenises the parameters section of a message. Middle parameters
// are non-empty space-separated runs; a parameter starting with ':' extends to
// the end of the line and may contain spaces. Spaces after the ':' are
// allowed and skipped, which the RFC does not permit, but is harmless; an
// empty trailing parameter is dropped rather than produced.
// Returns -1 when the protocol maximum of MAXIRCPARAMS parameters is
// exceeded, in which case the contents of params are undefined, but no out of
// bounds access occurs.
func readParams(buf []byte, i int, params *[MAXIRCPARAMS][]byte) int {
	pos := 0
	i = skipSpaces(buf, i)
	for i < len(buf) && buf[i] != ':' {
		// assert: buf[i] is neither space nor ':', so this run is non-empty
		next := skipNonSpaces(buf, i)
		if pos == MAXIRCPARAMS {
			return -1
		}
		params[pos] = buf[i:next]
		pos++
		i = skipSpaces(buf, next)
	}
	if i < len(buf) && buf[i] == ':' {
		if rest := skipSpaces(buf, i+1); rest < len(buf) {
			if pos == MAXIRCPARAMS {
				return -1
			}
			params[pos] = buf[rest:]
			pos++
		}
	}
	return pos
}

// parseMsg splits one IRC line into prefix, command and parameters. The line
// must already be stripped of its \r\n terminator. This is a purely syntactic
// tokeniser, no semantic checking takes place; see RFC Section 2.3.1 for the
// message format.
//
// The returned slices alias buf and stay valid exactly as long as buf does.
// No allocation or I/O happens here, so distinct buffers may be parsed from
// distinct goroutines concurrently. prefix is nil when the message carries
// none. On error the other return values are undefined and must not be used.
func parseMsg(buf []byte, params *[MAXIRCPARAMS][]byte) (prefix, cmd []byte, nparams int, err error) {
	i := skipSpaces(buf, 0)
	if i < len(buf) && buf[i] == ':' {
		next := skipNonSpaces(buf, i+1)
		if next == i+1 || next == len(buf) {
			// sender said there was a prefix, but there is no prefix,
			// or the message contains nothing else
			return nil, nil, 0, errMsgParse
		}
		prefix = buf[i+1 : next]
		i = next + 1
	}
	i = skipSpaces(buf, i)
	if i == len(buf) {
		return nil, nil, 0, errMsgParse
	}
	var next int
	if isDigit(buf[i]) {
		if i+3 <= len(buf) && isDigit(buf[i+1]) && isDigit(buf[i+2]) &&
			(i+3 == len(buf) || buf[i+3] == ' ') {
			next = i + 3
		} else {
			return nil, nil, 0, errMsgParse
		}
	} else {
		for next = i; next < len(buf) && isLetter(buf[next]); next++ {
		}
		if next == i || (next < len(buf) && buf[next] != ' ') {
			return nil, nil, 0, errMsgParse
		}
	}
	cmd = buf[i:next]
	if next < len(buf) {
		if nparams = readParams(buf, next+1, params); nparams == -1 {
			return nil, nil, 0, errMsgParse
		}
	}
	return prefix, cmd, nparams, nil
}
