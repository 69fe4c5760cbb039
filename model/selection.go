package model

import (
	"regexp"
	"slices"
	"strings"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// MaterialSelection は1つのマテリアルに対する色・仕上げ・パターンの選択です。
type MaterialSelection struct {
	ColorHex  string    `json:"colorHex"`
	Finish    Finish    `json:"finish"`
	PatternID PatternID `json:"patternId"`
}

// DesignSelections maps catalog material keys to their selection.
type DesignSelections map[string]MaterialSelection

// Keys returns the material keys in sorted order.
func (s DesignSelections) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a copy of s.
func (s DesignSelections) Clone() DesignSelections {
	if s == nil {
		return nil
	}
	out := make(DesignSelections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// NormalizeColorHex trims, uppercases and enforces the '#' prefix.
func NormalizeColorHex(raw string) string {
	color := strings.ToUpper(strings.TrimSpace(raw))
	if color != "" && !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	return color
}

func canonicalEnum(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateSelections checks raw selections against the catalog and returns
// them normalized (uppercase #RRGGBB colors, canonical finish and pattern).
//
// All issues are collected. Keys are visited in sorted order; for a known key
// color, finish and pattern are checked in that order. The input is not
// modified.
func (c *Catalog) ValidateSelections(raw map[string]MaterialSelection) (DesignSelections, error) {
	if len(raw) == 0 {
		return nil, &ValidationError{Issues: []Issue{{Err: ErrEmptySelections}}}
	}

	keys := DesignSelections(raw).Keys()
	validated := make(DesignSelections, len(raw))
	var issues []Issue
	for _, key := range keys {
		value := raw[key]
		if _, ok := c.materials[key]; !ok {
			issues = append(issues, Issue{Err: ErrUnknownMaterialKey, Key: key})
			continue
		}

		color := NormalizeColorHex(value.ColorHex)
		if !hexColorRegex.MatchString(color) {
			issues = append(issues, Issue{Err: ErrInvalidColor, Key: key})
		}
		finish := Finish(canonicalEnum(string(value.Finish)))
		if !c.HasFinish(finish) {
			issues = append(issues, Issue{Err: ErrInvalidFinish, Key: key})
		}
		pattern := PatternID(canonicalEnum(string(value.PatternID)))
		if !c.HasPattern(pattern) {
			issues = append(issues, Issue{Err: ErrInvalidPattern, Key: key})
		}

		validated[key] = MaterialSelection{
			ColorHex:  color,
			Finish:    finish,
			PatternID: pattern,
		}
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Message: "invalid selections", Issues: issues}
	}
	return validated, nil
}
