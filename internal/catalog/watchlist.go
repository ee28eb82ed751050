// Package catalog holds the tracked-item inputs: the watch-list file and the
// daily item-metadata cache that maps market hash names to C5 typeVal ids.
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadWatchlist reads one market hash name per line. Blank lines and lines
// starting with # are ignored; order is preserved.
func LoadWatchlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return names, nil
}
