package lm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/scfg/symtab"
	"github.com/pkg/errors"
)

// ReadARPA reads a back-off model in ARPA format:
//
//     \data\
//     ngram 1=3
//     ngram 2=1
//
//     \1-grams:
//     -1.0  <s>    -0.3
//     -0.5  texas  -0.2
//     -1.2  </s>
//
//     \2-grams:
//     -0.1  <s> texas
//
//     \end\
//
// Probabilities are taken as they are, i.e. as log10 values. The order of the
// model is the highest n-gram order declared in the data section. Words are
// interned into vocab.
func ReadARPA(r io.Reader, vocab *symtab.Table) (*NGram, error) {
	sc := bufio.NewScanner(r)
	lineno := 0
	order := 0
	var m *NGram
	section := -1 // -1: before data, 0: data, n: n-grams
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch {
		case line == `\data\`:
			section = 0
			continue
		case line == `\end\`:
			if m == nil {
				return nil, errors.New("ARPA file without n-gram sections")
			}
			tracer().Infof("read ARPA model of order %d with %d n-grams", m.order, m.Size())
			return m, nil
		case strings.HasPrefix(line, `\`) && strings.HasSuffix(line, `-grams:`):
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, `\`), `-grams:`))
			if err != nil || n < 1 || n > order {
				return nil, errors.Errorf("line %d: illegal section header %q", lineno, line)
			}
			if m == nil {
				m = NewNGram(order, vocab)
			}
			section = n
			continue
		}
		switch {
		case section < 0:
			continue // header comments
		case section == 0:
			if strings.HasPrefix(line, "ngram ") {
				f := strings.SplitN(strings.TrimPrefix(line, "ngram "), "=", 2)
				n, err := strconv.Atoi(strings.TrimSpace(f[0]))
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", lineno)
				}
				if n > order {
					order = n
				}
			}
		default:
			fields := strings.Fields(line)
			if len(fields) < section+1 || len(fields) > section+2 {
				return nil, errors.Errorf("line %d: expected %d-gram entry, have %q", lineno, section, line)
			}
			logp, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineno)
			}
			bow := 0.0
			if len(fields) == section+2 {
				if bow, err = strconv.ParseFloat(fields[section+1], 64); err != nil {
					return nil, errors.Wrapf(err, "line %d", lineno)
				}
			}
			m.Add(fields[1:section+1], logp, bow)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading ARPA model")
	}
	return nil, errors.New("ARPA file without \\end\\ marker")
}
