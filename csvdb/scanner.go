// Package csvdb loads a stoap database directory — one database.csv
// and one database_CUBE_<id>.csv per cube — into a cube.Environment.
package csvdb

import (
	"bufio"
	"context"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"

	"github.com/grailbio/stoap/errs"
)

// sectionScanner walks a stoap CSV file's comment/section/record
// structure: lines are ';'-separated, comments start with '#',
// section headers are '[BRACKETED]', \r and the trailing ASCII SUB
// (0x1A) byte are stripped.
type sectionScanner struct {
	sc      *bufio.Scanner
	line    string
	section string
	err     error
}

func openScanner(ctx context.Context, path string) (*sectionScanner, func() error, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errs.Wrap(errs.FileNotFound, err, "csvdb: open "+path)
	}
	sc := bufio.NewScanner(f.Reader(ctx))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &sectionScanner{sc: sc}, func() error { return f.Close(ctx) }, nil
}

func cleanLine(raw string) string {
	raw = strings.TrimRight(raw, "\x1a")
	raw = strings.TrimRight(raw, "\r")
	return raw
}

// next advances to the next non-blank, non-comment line, updating
// section when a "[BRACKETED]" header is seen. Returns false at EOF
// or on a scanner error (check Err()).
func (s *sectionScanner) next() bool {
	for s.sc.Scan() {
		line := cleanLine(s.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			s.section = line[1 : len(line)-1]
			continue
		}
		s.line = line
		return true
	}
	s.err = s.sc.Err()
	return false
}

func (s *sectionScanner) Err() error {
	if s.err != nil {
		return errors.Wrap(s.err, "csvdb: scan")
	}
	return nil
}

// fields splits a record line on ';'.
func fields(line string) []string {
	return strings.Split(line, ";")
}

// subList splits a field on ',' for its comma-separated sub-values.
// An empty field yields no elements.
func subList(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, ",")
}
