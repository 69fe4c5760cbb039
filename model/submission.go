package model

// CheckSubmittable applies the rules a design must satisfy before it can be
// submitted for review: a body paint selection, a glass selection, and no
// pattern on the glass.
func (c *Catalog) CheckSubmittable(selections DesignSelections) error {
	hasBodyPaint := false
	hasGlass := false

	for _, key := range selections.Keys() {
		if c.IsBodyPaint(key) {
			hasBodyPaint = true
		}
		if c.IsGlass(key) {
			hasGlass = true
			pattern := canonicalEnum(string(selections[key].PatternID))
			if pattern != "" && pattern != string(PatternNone) {
				return &SubmissionError{Err: ErrGlassPatternNotNone}
			}
		}
	}

	if !hasBodyPaint {
		return &SubmissionError{Err: ErrMissingBodyPaint}
	}
	if !hasGlass {
		return &SubmissionError{Err: ErrMissingGlass}
	}
	return nil
}
