package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"
)

// CacheKey identifies a cached validation result. Path and ModTime name the
// component file; Inputs digests everything else the validator can read:
// attached scripts, the component body (README.md for the manifest) and the
// plugin's file list.
type CacheKey struct {
	Validator string    `json:"validator"`
	Path      string    `json:"path"`
	ModTime   time.Time `json:"mod_time"`
	Inputs    string    `json:"inputs"`
}

// CacheKeyFor builds the key for running validator on c within p. Components
// without a modification time are not cacheable.
func CacheKeyFor(validator string, c Component, p *Plugin) (CacheKey, bool) {
	if c.ModTime.IsZero() || c.Path == "" {
		return CacheKey{}, false
	}
	return CacheKey{
		Validator: validator,
		Path:      c.Path,
		ModTime:   c.ModTime.UTC(),
		Inputs:    inputDigest(c, p),
	}, true
}

func inputDigest(c Component, p *Plugin) string {
	h := sha256.New()
	fmt.Fprintf(h, "body %d\n", len(c.Body))
	io.WriteString(h, c.Body)
	for _, s := range c.Scripts {
		fmt.Fprintf(h, "\nscript %s %d %d %t\n", s.Path, s.ModTime.UnixNano(), s.Size, s.Executable)
		io.WriteString(h, s.Content)
	}
	if p != nil {
		files := append([]string(nil), p.Files...)
		sort.Strings(files)
		io.WriteString(h, "\nfiles\n")
		for _, f := range files {
			io.WriteString(h, f+"\n")
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%s|%d|%s", k.Validator, k.Path, k.ModTime.UnixNano(), k.Inputs)
}
