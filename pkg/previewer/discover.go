package previewer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var discoveryPrefixes = []string{
	"Initialized IPC, listening on ",
	"Connected to primary instance at ",
}

// discover reads lines from r until one announces the IPC address. The
// address ends at the first control character, which drops trailing
// terminal escape sequences.
func discover(r *bufio.Reader) (string, error) {
	var lines int
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines++
			if addr, ok := parseAnnouncement(line); ok {
				return addr, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: stdout closed after %d lines", ErrDiscovery, lines)
			}
			return "", fmt.Errorf("%w: %w", ErrDiscovery, err)
		}
	}
}

func parseAnnouncement(line string) (string, bool) {
	for _, prefix := range discoveryPrefixes {
		i := strings.Index(line, prefix)
		if i < 0 {
			continue
		}
		rest := line[i+len(prefix):]
		if end := strings.IndexFunc(rest, unicode.IsControl); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.TrimSpace(rest)
		if rest == "" {
			continue
		}
		return rest, true
	}
	return "", false
}
