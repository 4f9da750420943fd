package profile

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"relay-bridger/pkg/types"
)

// Load reads private keys and proxies from two parallel flat files, one
// entry per line, blank lines skipped. The counts must match exactly;
// a mismatch is a fatal startup error.
func Load(privateKeysPath, proxiesPath string) ([]types.Profile, error) {
	privateKeys, err := readLines(privateKeysPath)
	if err != nil {
		return nil, err
	}
	proxies, err := readLines(proxiesPath)
	if err != nil {
		return nil, err
	}

	if len(privateKeys) != len(proxies) {
		return nil, fmt.Errorf("private key count (%d) does not match proxy count (%d)",
			len(privateKeys), len(proxies))
	}

	profiles := make([]types.Profile, len(privateKeys))
	for i := range privateKeys {
		profiles[i] = types.Profile{PrivateKey: privateKeys[i], Proxy: proxies[i]}
	}
	return profiles, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
