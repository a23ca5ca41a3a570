package listfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/eez-psu/psu-go/pkg/list"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

// Default format characters.
const (
	DefaultSeparator = ','
	DefaultNoValue   = '='
)

// ErrInvalidFormat is returned for unusable separator or marker characters.
var ErrInvalidFormat = errors.New("invalid list file format")

// Lists holds the three sequences of one channel, in file column order.
type Lists struct {
	Dwell   []float64
	Voltage []float64
	Current []float64
}

func (l *Lists) columns() [3]*[]float64 {
	return [3]*[]float64{&l.Dwell, &l.Voltage, &l.Current}
}

// Rows returns the number of rows the lists occupy in a file.
func (l Lists) Rows() int {
	return list.Lengths{Dwell: len(l.Dwell), Voltage: len(l.Voltage), Current: len(l.Current)}.Max()
}

// Format holds the characters that shape a list file.
type Format struct {
	// Separator separates the fields of a row.
	Separator byte

	// NoValue marks a field past the end of its list.
	NoValue byte
}

// DefaultFormat returns the standard list file format.
func DefaultFormat() Format {
	return Format{Separator: DefaultSeparator, NoValue: DefaultNoValue}
}

// Validate checks that the characters cannot be confused with numbers,
// whitespace or each other.
func (f Format) Validate() error {
	for _, c := range []byte{f.Separator, f.NoValue} {
		if isSpace(c) || isDigit(c) || c == '+' || c == '-' || c == '.' || c == 0 {
			return fmt.Errorf("%w: character %q", ErrInvalidFormat, c)
		}
	}
	if f.Separator == f.NoValue {
		return fmt.Errorf("%w: separator and marker are both %q", ErrInvalidFormat, f.Separator)
	}
	return nil
}

// Encode writes lists to w, one row per step index.
func (f Format) Encode(w io.Writer, l Lists) error {
	bw := bufio.NewWriter(w)
	cols := l.columns()
	rows := l.Rows()

	var num []byte
	for i := 0; i < rows; i++ {
		for c, col := range cols {
			if c > 0 {
				bw.WriteByte(f.Separator)
			}
			if i < len(*col) {
				num = strconv.AppendFloat(num[:0], (*col)[i], 'f', 6, 64)
				bw.Write(num)
			} else {
				bw.WriteByte(f.NoValue)
			}
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// Decode parses lists from r.
//
// Rows are read until end of input, at most list.MaxLength of them. In every
// column a number is accepted only as the next entry in order, and once a
// column has ended it may only hold the "no value" marker. Any violation fails
// the whole decode with psuerr.ErrMalformedListFile.
func (f Format) Decode(r io.Reader) (Lists, error) {
	s := newScanner(r)
	var out Lists
	cols := out.columns()

	for i := 0; i < list.MaxLength; i++ {
		s.skipSpaces()
		if !s.available() {
			break
		}

		for c, col := range cols {
			if c > 0 {
				s.skipSpaces()
				s.match(f.Separator)
				s.skipSpaces()
			}
			if err := f.decodeField(s, col, i); err != nil {
				if s.err != nil {
					return Lists{}, fmt.Errorf("%w: %v", psuerr.ErrStorageIO, s.err)
				}
				return Lists{}, fmt.Errorf("%w: row %d, %s column: %v",
					psuerr.ErrMalformedListFile, i+1, list.Kinds[c], err)
			}
		}
	}

	if s.err != nil {
		return Lists{}, fmt.Errorf("%w: %v", psuerr.ErrStorageIO, s.err)
	}
	return out, nil
}

var (
	errMarkerTooEarly = errors.New("no-value marker before the column ended")
	errOutOfOrder     = errors.New("value out of order")
	errBadToken       = errors.New("expected number or no-value marker")
)

func (f Format) decodeField(s *scanner, col *[]float64, row int) error {
	if s.match(f.NoValue) {
		if row < len(*col) {
			return errMarkerTooEarly
		}
		return nil
	}

	value, ok := s.number()
	if !ok {
		return errBadToken
	}
	if len(*col) != row {
		return errOutOfOrder
	}
	*col = append(*col, value)
	return nil
}

// scanner reads list file tokens one byte at a time.
// The first read error other than io.EOF is kept in err.
type scanner struct {
	r   *bufio.Reader
	err error
	tok []byte
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReader(r)}
}

func (s *scanner) peek() (byte, bool) {
	if s.err != nil {
		return 0, false
	}
	b, err := s.r.Peek(1)
	if err != nil {
		if err != io.EOF {
			s.err = err
		}
		return 0, false
	}
	return b[0], true
}

func (s *scanner) available() bool {
	_, ok := s.peek()
	return ok
}

func (s *scanner) skipSpaces() {
	for {
		c, ok := s.peek()
		if !ok || !isSpace(c) {
			return
		}
		s.r.ReadByte()
	}
}

func (s *scanner) match(c byte) bool {
	b, ok := s.peek()
	if !ok || b != c {
		return false
	}
	s.r.ReadByte()
	return true
}

func (s *scanner) digits() int {
	n := 0
	for {
		c, ok := s.peek()
		if !ok || !isDigit(c) {
			return n
		}
		s.r.ReadByte()
		s.tok = append(s.tok, c)
		n++
	}
}

// number reads a decimal number with optional sign, fraction and exponent.
func (s *scanner) number() (float64, bool) {
	s.tok = s.tok[:0]

	if c, ok := s.peek(); ok && (c == '+' || c == '-') {
		s.r.ReadByte()
		s.tok = append(s.tok, c)
	}

	n := s.digits()
	if s.match('.') {
		s.tok = append(s.tok, '.')
		n += s.digits()
	}
	if n == 0 {
		return 0, false
	}

	if c, ok := s.peek(); ok && (c == 'e' || c == 'E') {
		s.exponent()
	}

	v, err := strconv.ParseFloat(string(s.tok), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// exponent consumes an exponent suffix only when it is well formed.
func (s *scanner) exponent() {
	buf, _ := s.r.Peek(3)
	i := 1
	if i < len(buf) && (buf[i] == '+' || buf[i] == '-') {
		i++
	}
	if i >= len(buf) || !isDigit(buf[i]) {
		return
	}
	s.tok = append(s.tok, buf[:i]...)
	s.r.Discard(i)
	s.digits()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
