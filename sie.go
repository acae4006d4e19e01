package revisor

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseSIEFile parses a SIE4 export from disk. The only error returned is a
// failure to open the file; the parse itself is best effort and total.
func ParseSIEFile(filename string) (*Document, error) {
	ifile, ierr := os.Open(filename)
	if ierr != nil {
		return nil, ierr
	}
	defer ifile.Close()
	return ParseSIE(ifile), nil
}

// ParseSIE parses a SIE4 export. The parser never fails: unrecognized
// directives, partially matched tag lines and unparseable amounts are skipped
// and parsing continues. Voucher and transaction order follow the document.
//
// Recognized directives: #ORGNR, #FNAMN, #KONTO, #VER, #TRANS. A #VER line
// opens a voucher context that following #TRANS lines attach to; a #TRANS
// before any #VER has nowhere to go and is dropped.
func ParseSIE(r io.Reader) *Document {
	doc := &Document{}
	curVoucher := -1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if len(trimmedLine) == 0 || trimmedLine[0] != '#' {
			continue
		}

		tag := trimmedLine
		rest := ""
		if idx := strings.IndexAny(trimmedLine, " \t"); idx >= 0 {
			tag, rest = trimmedLine[:idx], trimmedLine[idx+1:]
		}

		switch strings.ToUpper(tag) {
		case "#ORGNR":
			fields := splitSIEFields(rest)
			if len(fields) > 0 {
				doc.OrgNr = fields[0]
			}
		case "#FNAMN":
			doc.Name = strings.ReplaceAll(strings.TrimSpace(rest), `"`, "")
		case "#KONTO":
			fields := splitSIEFields(rest)
			if len(fields) < 2 || !isDigits(fields[0]) {
				continue
			}
			doc.Accounts = append(doc.Accounts, Account{Code: fields[0], Name: fields[1]})
		case "#VER":
			fields := splitSIEFields(rest)
			if len(fields) < 3 || !isSIEDate(fields[2]) {
				continue
			}
			v := Voucher{Series: fields[0], Number: fields[1], Date: fields[2]}
			if len(fields) > 3 {
				v.Text = fields[3]
			}
			doc.Vouchers = append(doc.Vouchers, v)
			curVoucher = len(doc.Vouchers) - 1
		case "#TRANS":
			if curVoucher < 0 {
				continue
			}
			trans, ok := parseTransFields(splitSIEFields(rest))
			if !ok {
				continue
			}
			doc.Vouchers[curVoucher].Transactions = append(doc.Vouchers[curVoucher].Transactions, trans)
		}
	}

	return doc
}

// parseTransFields extracts a transaction from the fields of a #TRANS line:
// account, optional {object list}, amount, then optional transaction date and
// description. A missing account or unparseable amount rejects the line.
func parseTransFields(fields []string) (Transaction, bool) {
	if len(fields) == 0 || !isDigits(fields[0]) {
		return Transaction{}, false
	}
	trans := Transaction{Account: fields[0]}

	idx := 1
	if idx < len(fields) && strings.HasPrefix(fields[idx], "{") {
		idx++
	}
	if idx >= len(fields) {
		return Transaction{}, false
	}
	amount, err := decimal.NewFromString(fields[idx])
	if err != nil {
		return Transaction{}, false
	}
	trans.Amount = amount

	// Optional trailing fields: transaction date, then free text.
	rem := fields[idx+1:]
	if len(rem) > 0 && (rem[0] == "" || isSIEDate(rem[0])) {
		rem = rem[1:]
	}
	if len(rem) > 0 {
		trans.Description = rem[0]
	}
	return trans, true
}

// splitSIEFields splits a directive's argument list into fields. Quoted
// strings become one field without the quotes, {...} object lists stay one
// field including the braces, everything else splits on whitespace. An
// unterminated quote or brace group runs to end of line rather than failing.
func splitSIEFields(s string) []string {
	var fields []string
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}
			fields = append(fields, s[i+1:j])
			if j < len(s) {
				j++
			}
			i = j
		case c == '{':
			depth := 0
			j := i
			for ; j < len(s); j++ {
				if s[j] == '{' {
					depth++
				} else if s[j] == '}' {
					depth--
					if depth == 0 {
						j++
						break
					}
				}
			}
			fields = append(fields, s[i:j])
			i = j
		default:
			j := i
			for j < len(s) && s[j] != ' ' && s[j] != '\t' {
				j++
			}
			fields = append(fields, s[i:j])
			i = j
		}
	}
	return fields
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isSIEDate(s string) bool {
	return len(s) == 8 && isDigits(s)
}
