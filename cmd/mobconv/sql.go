package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// SQL parsing helpers
// ---------------------------------------------------------------------------

// parseValues extracts column values from a single INSERT INTO ... VALUES (...) line.
func parseValues(line string) []string {
	upper := strings.ToUpper(line)
	idx := strings.Index(upper, "VALUES")
	if idx == -1 {
		return nil
	}
	rest := line[idx+6:]
	start := strings.IndexByte(rest, '(')
	if start == -1 {
		return nil
	}
	end := strings.LastIndexByte(rest, ')')
	if end == -1 || end <= start {
		return nil
	}
	inner := rest[start+1 : end]

	var values []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if inQuote {
			if ch == '\'' {
				if i+1 < len(inner) && inner[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					inQuote = false
				}
			} else {
				cur.WriteByte(ch)
			}
			continue
		}
		switch ch {
		case '\'':
			inQuote = true
		case ',':
			values = append(values, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	values = append(values, strings.TrimSpace(cur.String()))

	for i, v := range values {
		if strings.EqualFold(v, "null") {
			values[i] = ""
		}
	}
	return values
}

// parseAllInserts reads a SQL dump and returns every parsed INSERT row.
func parseAllInserts(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "INSERT INTO") {
			continue
		}
		if vals := parseValues(line); vals != nil {
			rows = append(rows, vals)
		}
	}
	return rows, nil
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, _ := strconv.Atoi(s)
	return v
}

func parseInt32(s string) int32 { return int32(parseInt(s)) }
func parseInt16(s string) int16 { return int16(parseInt(s)) }

func parseBool01(s string) bool { return s != "" && s != "0" }

// writeYAML marshals v to path with an optional leading comment line.
func writeYAML(path string, v interface{}, comment string) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if comment != "" {
		fmt.Fprintln(f, comment)
		fmt.Fprintln(f)
	}
	_, err = f.Write(out)
	return err
}
