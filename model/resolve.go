package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NameTransform is one step of a name normalization pipeline.
type NameTransform func(string) string

// NameNormalizer applies its transforms in order.
type NameNormalizer []NameTransform

// Normalize runs s through every transform.
func (n NameNormalizer) Normalize(s string) string {
	for _, transform := range n {
		s = transform(s)
	}
	return s
}

// MaterialNameNormalizer is the pipeline used to compare material names
// coming from 3D asset exports:
//  1. Trim surrounding whitespace.
//  2. Case-fold to lower.
//  3. Turn separators (space, '-', '.') into '_'.
//  4. Collapse repeated '_'.
var MaterialNameNormalizer = NameNormalizer{
	strings.TrimSpace,
	strings.ToLower,
	separatorsToUnderscore,
	collapseUnderscores,
}

func separatorsToUnderscore(s string) string {
	return strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(s)
}

func collapseUnderscores(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}

// NormalizeMaterialName normalizes a material name or key for comparison.
func NormalizeMaterialName(s string) string {
	return MaterialNameNormalizer.Normalize(s)
}

var materialNumberRegex = regexp.MustCompile(`material[\s_.-]?(\d+)`)

// Aliases used when the structural key is not enough to identify a role.
var (
	bodyPaintAliases = []string{"body_paint", "bodypaint"}
	glassAliases     = []string{"glass"}
)

// ResolveKey maps a free-text material name ("Material.009", "material-3")
// to its canonical catalog key.
func (c *Catalog) ResolveKey(name string) (string, bool) {
	if _, ok := c.materials[name]; ok {
		return name, true
	}
	m := materialNumberRegex.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return "", false
	}
	key := fmt.Sprintf("material_%d", n)
	if _, ok := c.materials[key]; !ok {
		return "", false
	}
	return key, true
}

// IsBodyPaint reports whether key identifies the body paint material.
// The structural key and the name heuristic are OR-combined.
func (c *Catalog) IsBodyPaint(key string) bool {
	return c.matchesRole(key, c.BodyPaintKey, bodyPaintAliases)
}

// IsGlass reports whether key identifies the glass material.
func (c *Catalog) IsGlass(key string) bool {
	return c.matchesRole(key, c.GlassKey, glassAliases)
}

func (c *Catalog) matchesRole(key, roleKey string, aliases []string) bool {
	if roleKey != "" {
		if key == roleKey {
			return true
		}
		if resolved, ok := c.ResolveKey(key); ok && resolved == roleKey {
			return true
		}
	}

	names := []string{NormalizeMaterialName(key)}
	if m, ok := c.materials[key]; ok {
		names = append(names, NormalizeMaterialName(m.Name))
	}
	for _, name := range names {
		for _, alias := range aliases {
			if strings.Contains(name, alias) {
				return true
			}
		}
	}
	return false
}
