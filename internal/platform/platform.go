// Package platform classifies media URLs by hosting platform.
package platform

import (
	"fmt"
	"regexp"
	"strings"
)

// Unsupported is the identifier reported for URLs matching no known platform.
const Unsupported = "unsupported"

// Pattern pairs a platform identifier with the URL shapes it recognizes.
type Pattern struct {
	Name     string
	Patterns []string
}

// DefaultPatterns returns the built-in platform table. Order matters: the
// first matching entry wins.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Name: "YouTube", Patterns: []string{
			`(?:youtube\.com|youtu\.be)`,
			`youtube\.com/watch\?v=`,
			`youtu\.be/`,
			`youtube\.com/embed/`,
			`youtube\.com/v/`,
		}},
		{Name: "Facebook", Patterns: []string{
			`facebook\.com`,
			`fb\.watch`,
			`facebook\.com/watch`,
			`facebook\.com/.*?/videos`,
		}},
		{Name: "Twitter/X", Patterns: []string{
			`twitter\.com`,
			`x\.com`,
			`twitter\.com/.*?/status`,
			`x\.com/.*?/status`,
		}},
		{Name: "Instagram", Patterns: []string{
			`instagram\.com`,
			`instagram\.com/p/`,
			`instagram\.com/reel/`,
			`instagram\.com/tv/`,
		}},
		{Name: "TikTok", Patterns: []string{
			`tiktok\.com`,
			`tiktok\.com/@.*?/video`,
		}},
		{Name: "Vimeo", Patterns: []string{
			`vimeo\.com`,
			`vimeo\.com/\d+`,
		}},
		{Name: "Twitch", Patterns: []string{
			`twitch\.tv`,
			`twitch\.tv/videos`,
			`twitch\.tv/.*?/clip`,
		}},
		{Name: "Dailymotion", Patterns: []string{
			`dailymotion\.com`,
			`dailymotion\.com/video`,
		}},
	}
}

type entry struct {
	name string
	res  []*regexp.Regexp
}

// Detector matches URLs against an ordered platform pattern table. It holds
// no mutable state and is safe for concurrent use.
type Detector struct {
	entries []entry
}

// NewDetector compiles the given pattern table. New platforms are added by
// extending the table, not the detector.
func NewDetector(patterns []Pattern) (*Detector, error) {
	d := &Detector{entries: make([]entry, 0, len(patterns))}
	for _, p := range patterns {
		e := entry{name: p.Name, res: make([]*regexp.Regexp, 0, len(p.Patterns))}
		for _, raw := range p.Patterns {
			re, err := regexp.Compile(raw)
			if err != nil {
				return nil, fmt.Errorf("platform %q: bad pattern %q: %w", p.Name, raw, err)
			}
			e.res = append(e.res, re)
		}
		d.entries = append(d.entries, e)
	}
	return d, nil
}

// Detect returns the first matching platform identifier and whether the URL
// is supported. Matching is case-insensitive; malformed URLs simply match
// nothing and report unsupported.
func (d *Detector) Detect(rawURL string) (string, bool) {
	u := strings.ToLower(rawURL)
	for _, e := range d.entries {
		for _, re := range e.res {
			if re.MatchString(u) {
				return e.name, true
			}
		}
	}
	return Unsupported, false
}

// IsSupported reports whether the URL belongs to a known platform.
func (d *Detector) IsSupported(rawURL string) bool {
	_, ok := d.Detect(rawURL)
	return ok
}

// Platforms returns the supported platform identifiers in table order.
func (d *Detector) Platforms() []string {
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.name
	}
	return names
}
