package trace

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errIncomplete means the data ends inside a record.
var errIncomplete = errors.New("incomplete record")

// Parse reads every record in data. Byte sections end at the first
// following section header, so output that itself contains a header line
// can be split at the wrong place.
func Parse(data []byte) ([]Record, error) {
	var records []Record
	offset := 0
	for offset < len(data) {
		rec, n, err := parseNext(data[offset:])
		if err != nil {
			return records, fmt.Errorf("trace record at byte %d: %w", offset, err)
		}
		records = append(records, rec)
		offset += n
	}
	return records, nil
}

// parseComplete returns the complete records at the start of data and how
// many bytes they span; a trailing partial record is left unread.
func parseComplete(data []byte) ([]Record, int, error) {
	var records []Record
	offset := 0
	for offset < len(data) {
		rec, n, err := parseNext(data[offset:])
		if errors.Is(err, errIncomplete) {
			break
		}
		if err != nil {
			return records, offset, fmt.Errorf("trace record at byte %d: %w", offset, err)
		}
		records = append(records, rec)
		offset += n
	}
	return records, offset, nil
}

func parseNext(data []byte) (Record, int, error) {
	if !bytes.HasPrefix(data, []byte(beginSentinel)) {
		if len(data) < len(beginSentinel) && bytes.HasPrefix([]byte(beginSentinel), data) {
			return Record{}, 0, errIncomplete
		}
		return Record{}, 0, errors.New("missing begin sentinel")
	}
	pos := len(beginSentinel)

	var rec Record
	header := func(key string) (string, error) {
		prefix := key + ":"
		if !bytes.HasPrefix(data[pos:], []byte(prefix)) {
			if len(data[pos:]) < len(prefix) {
				return "", errIncomplete
			}
			return "", fmt.Errorf("expected %s header", key)
		}
		end := bytes.IndexByte(data[pos:], '\n')
		if end < 0 {
			return "", errIncomplete
		}
		value := string(data[pos+len(prefix) : pos+end])
		pos += end + 1
		return value, nil
	}

	args, err := header("ARGS")
	if err != nil {
		return Record{}, 0, err
	}
	if args != "" {
		rec.Args = strings.Split(args, " ")
	}
	if rec.Command, err = header("CMD"); err != nil {
		return Record{}, 0, err
	}
	if rec.Dir, err = header("CWD"); err != nil {
		return Record{}, 0, err
	}
	if rec.Path, err = header("PATH"); err != nil {
		return Record{}, 0, err
	}
	code, err := header("EXITCODE")
	if err != nil {
		return Record{}, 0, err
	}
	if rec.ExitCode, err = strconv.Atoi(code); err != nil {
		return Record{}, 0, fmt.Errorf("bad EXITCODE %q", code)
	}

	if !bytes.HasPrefix(data[pos:], []byte(stdinHeader)) {
		if len(data[pos:]) < len(stdinHeader) {
			return Record{}, 0, errIncomplete
		}
		return Record{}, 0, errors.New("expected STDIN section")
	}
	pos += len(stdinHeader)

	section := func(terminator string) ([]byte, error) {
		end := bytes.Index(data[pos:], []byte(terminator))
		if end < 0 {
			return nil, errIncomplete
		}
		out := append([]byte(nil), data[pos:pos+end]...)
		pos += end + len(terminator)
		return out, nil
	}
	if rec.Stdin, err = section(stdoutHeader); err != nil {
		return Record{}, 0, err
	}
	if rec.Stdout, err = section(stderrHeader); err != nil {
		return Record{}, 0, err
	}
	if rec.Stderr, err = section(endSentinel); err != nil {
		return Record{}, 0, err
	}
	return rec, pos, nil
}
