// Package judge rates free-text model completions against keyword templates.
package judge

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Keywords holds the lowercased positive and negative match terms for one
// judge template.
type Keywords struct {
	Positive []string
	Negative []string
}

// LoadKeywords reads positive_keywords.txt and negative_keywords.txt from
// templateDir. A missing directory or file yields empty keyword sets rather
// than an error, so judging degrades to the length heuristic.
func LoadKeywords(templateDir string) (Keywords, error) {
	pos, err := readKeywordFile(filepath.Join(templateDir, "positive_keywords.txt"))
	if err != nil {
		return Keywords{}, err
	}
	neg, err := readKeywordFile(filepath.Join(templateDir, "negative_keywords.txt"))
	if err != nil {
		return Keywords{}, err
	}
	return Keywords{Positive: pos, Negative: neg}, nil
}

func readKeywordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
