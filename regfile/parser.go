package regfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/moffa90/go-ov7670/protocol"
)

// DefaultListCapacity is the initial capacity of the parsed list. Typical
// OV7670 init tables hold 100 to 170 entries.
const DefaultListCapacity = 192

// ErrNoEntries is returned when a file holds no register pairs.
var ErrNoEntries = errors.New("no register entries found")

// ParseError reports the line a parse failure occurred on.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v (%q)", e.Line, e.Err, e.Text)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses a register list file from the given path.
//
// Example:
//
//	regs, err := regfile.Parse("qvga_rgb565.regs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = cam.WriteRegisters(ctx, regs)
func Parse(path string) ([]protocol.RegisterValue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses a register list from any io.Reader.
//
// Each entry is a register and a value in hex, with or without a 0x prefix,
// separated by whitespace or a comma. Entries may be wrapped in braces, so C
// tables paste in unchanged:
//
//	// COM7: reset all registers
//	{0x12, 0x80},
//	0x11 0x01   # CLKRC prescaler
//	3a 04
//
// Text after # or // is ignored, as are blank lines and C array
// declaration lines. The pair 00 00 ends the list, as in the firmware's
// register tables; anything after it is not read.
func ParseReader(r io.Reader) ([]protocol.RegisterValue, error) {
	scanner := bufio.NewScanner(r)
	regs := make([]protocol.RegisterValue, 0, DefaultListCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()

		line := stripComment(raw)
		if skipLine(line) {
			continue
		}

		rv, err := parseEntry(line)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: strings.TrimSpace(raw), Err: err}
		}

		if rv.Reg == 0x00 && rv.Value == 0x00 {
			break
		}
		regs = append(regs, rv)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(regs) == 0 {
		return nil, ErrNoEntries
	}

	return regs, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// skipLine reports lines with no entry: blanks and C array scaffolding such
// as "static const uint8_t regs[][2] = {" and "};".
func skipLine(line string) bool {
	switch {
	case line == "":
		return true
	case strings.HasSuffix(line, "{"):
		return true
	case strings.HasPrefix(line, "}") && !strings.ContainsAny(line, "0123456789abcdefABCDEF"):
		return true
	}
	return false
}

// parseEntry parses one "reg value" pair.
func parseEntry(line string) (protocol.RegisterValue, error) {
	line = strings.TrimSuffix(line, ",")
	line = strings.TrimPrefix(line, "{")
	line = strings.TrimSuffix(line, "}")
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(fields) != 2 {
		return protocol.RegisterValue{}, fmt.Errorf("expected register and value, got %d fields", len(fields))
	}

	reg, err := parseByte("register", fields[0])
	if err != nil {
		return protocol.RegisterValue{}, err
	}
	value, err := parseByte("value", fields[1])
	if err != nil {
		return protocol.RegisterValue{}, err
	}

	return protocol.RegisterValue{Reg: reg, Value: value}, nil
}

func parseByte(name, field string) (byte, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
	if digits == "" {
		return 0, fmt.Errorf("invalid %s %q", name, field)
	}

	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: not hex", name, field)
	}
	if v > 0xFF {
		return 0, fmt.Errorf("%s %s out of range 0x00-0xFF", name, field)
	}
	return byte(v), nil
}
