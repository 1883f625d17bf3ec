package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spigell/cv-ranker/internal/candidate"
)

// collectDocuments reads every file named in paths. Directories contribute
// their *.pdf files, sorted by name; subdirectories are not walked.
func collectDocuments(paths []string) ([]candidate.Document, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", path, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			found = append(found, filepath.Join(path, entry.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	docs := make([]candidate.Document, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading document: %w", err)
		}
		docs = append(docs, candidate.Document{Filename: file, Data: data})
	}

	return docs, nil
}

// resolveJobDescription prefers inline text over a file. The file flag
// overrides the configured file.
func resolveJobDescription(inline, file, configured string) (string, error) {
	if text := strings.TrimSpace(inline); text != "" {
		return text, nil
	}

	if strings.TrimSpace(file) == "" {
		file = configured
	}
	if file = strings.TrimSpace(file); file == "" {
		return "", errors.New("job description is not provided")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading job description: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("job description file %q is empty", file)
	}
	return text, nil
}
