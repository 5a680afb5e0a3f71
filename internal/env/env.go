// Package env loads KEY=VALUE files into the process environment.
package env

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Load reads each file in order and sets the variables it defines. Variables
// already present in the environment before Load was called are never
// overridden; a later file may override an earlier one. Missing files are
// skipped. Load returns the files it read.
func Load(paths ...string) []string {
	pre := map[string]struct{}{}
	for _, e := range os.Environ() {
		if i := strings.IndexByte(e, '='); i > 0 {
			pre[e[:i]] = struct{}{}
		}
	}
	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		vars, err := Parse(f)
		_ = f.Close()
		if err != nil {
			continue
		}
		for k, v := range vars {
			if _, ok := pre[k]; ok {
				continue
			}
			_ = os.Setenv(k, v)
		}
		loaded = append(loaded, p)
	}
	return loaded
}

// Parse reads dotenv syntax: comments, optional "export " prefixes, inline
// " #" comments and single or double quotes.
func Parse(r io.Reader) (map[string]string, error) {
	out := map[string]string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if k, v, ok := parseLine(sc.Text()); ok {
			out[k] = v
		}
	}
	return out, sc.Err()
}

func parseLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	k, v, ok := strings.Cut(line, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", false
	}
	v = strings.TrimSpace(v)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') {
		if end := strings.IndexByte(v[1:], v[0]); end >= 0 {
			return k, v[1 : end+1], true
		}
	}
	if j := strings.Index(v, " #"); j >= 0 {
		v = strings.TrimSpace(v[:j])
	}
	return k, v, true
}
