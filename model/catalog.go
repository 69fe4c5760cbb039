package model

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Finish is a surface treatment applied to a material.
type Finish string

const (
	FinishGloss Finish = "GLOSS"
	FinishMatte Finish = "MATTE"
)

// PatternID identifies a surface pattern.
type PatternID string

const (
	PatternNone PatternID = "NONE"
	Pattern1    PatternID = "PATTERN_1"
	Pattern2    PatternID = "PATTERN_2"
	Pattern3    PatternID = "PATTERN_3"
)

var materialKeyRegex = regexp.MustCompile(`^material_[1-9][0-9]*$`)

// CatalogMaterial は設定可能なマテリアルグループです。
type CatalogMaterial struct {
	Key    string `json:"key" yaml:"key"`
	Name   string `json:"name" yaml:"name"`
	Detail string `json:"detail" yaml:"detail"`
}

// Catalog はモデルで選択可能なマテリアル・仕上げ・パターンの一覧です。
type Catalog struct {
	ID                string            `json:"id" yaml:"id"`
	Name              string            `json:"name" yaml:"name"`
	Materials         []CatalogMaterial `json:"materials" yaml:"materials"`
	AllowedFinishes   []Finish          `json:"allowedFinishes" yaml:"allowedFinishes"`
	AllowedPatternIDs []PatternID       `json:"allowedPatternIds" yaml:"allowedPatternIds"`
	BodyPaintKey      string            `json:"-" yaml:"bodyPaintKey"`
	GlassKey          string            `json:"-" yaml:"glassKey"`

	materials map[string]CatalogMaterial
	finishes  map[Finish]bool
	patterns  map[PatternID]bool
}

// DefaultCatalog returns the reference catalog for the Cybertruck model.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		ID:   "tesla-cybertruck-low-poly",
		Name: "Tesla Cybertruck Low Poly",
		Materials: []CatalogMaterial{
			{Key: "material_1", Name: "Hooks, Hitch & Mud Guards", Detail: "Tow hitch cover, front hooks, and tire splash guards"},
			{Key: "material_3", Name: "Glass Set", Detail: "Windshield, roof glass, and door glass"},
			{Key: "material_5", Name: "Window & Door Frames", Detail: "Trim and surrounding frame pieces"},
			{Key: "material_6", Name: "Cargo Bed", Detail: "Rear bed panel and inner bed walls"},
			{Key: "material_7", Name: "Wheel Covers", Detail: "Wheel cover face and trims"},
			{Key: "material_8", Name: "Tires", Detail: "Rubber tire material"},
			{Key: "material_9", Name: "Body Paint", Detail: "Main Tesla body panels"},
		},
		AllowedFinishes:   []Finish{FinishGloss, FinishMatte},
		AllowedPatternIDs: []PatternID{PatternNone, Pattern1, Pattern2, Pattern3},
		BodyPaintKey:      "material_9",
		GlassKey:          "material_3",
	}
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog はYAMLファイルからカタログを読み込みます。
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog はYAMLデータからカタログを生成し、検証します。
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate はカタログの不変条件を検証し、検索用のインデックスを構築します。
func (c *Catalog) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("catalog id is required")
	}
	if len(c.Materials) == 0 {
		return fmt.Errorf("catalog must contain at least one material")
	}
	if len(c.AllowedFinishes) == 0 {
		return fmt.Errorf("catalog must allow at least one finish")
	}
	if len(c.AllowedPatternIDs) == 0 {
		return fmt.Errorf("catalog must allow at least one pattern")
	}

	materials := make(map[string]CatalogMaterial, len(c.Materials))
	for _, m := range c.Materials {
		if !materialKeyRegex.MatchString(m.Key) {
			return fmt.Errorf("catalog material key %q is malformed", m.Key)
		}
		if _, dup := materials[m.Key]; dup {
			return fmt.Errorf("catalog material key %q is duplicated", m.Key)
		}
		materials[m.Key] = m
	}

	finishes := make(map[Finish]bool, len(c.AllowedFinishes))
	for _, f := range c.AllowedFinishes {
		finishes[Finish(canonicalEnum(string(f)))] = true
	}
	patterns := make(map[PatternID]bool, len(c.AllowedPatternIDs))
	for _, p := range c.AllowedPatternIDs {
		patterns[PatternID(canonicalEnum(string(p)))] = true
	}
	if !patterns[PatternNone] {
		return fmt.Errorf("catalog must allow pattern %s", PatternNone)
	}

	for _, key := range []string{c.BodyPaintKey, c.GlassKey} {
		if key == "" {
			continue
		}
		if _, ok := materials[key]; !ok {
			return fmt.Errorf("catalog designated key %q is not a catalog material", key)
		}
	}

	c.materials = materials
	c.finishes = finishes
	c.patterns = patterns
	return nil
}

// Material returns the catalog material for key.
func (c *Catalog) Material(key string) (CatalogMaterial, bool) {
	m, ok := c.materials[key]
	return m, ok
}

// HasFinish reports whether f (already canonical) is allowed.
func (c *Catalog) HasFinish(f Finish) bool {
	return c.finishes[f]
}

// HasPattern reports whether p (already canonical) is allowed.
func (c *Catalog) HasPattern(p PatternID) bool {
	return c.patterns[p]
}
