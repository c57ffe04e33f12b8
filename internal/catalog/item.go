// Package catalog defines the immutable item and subskill models consumed
// by the rest of the adaptive core, plus the CatalogReader contract an
// external collaborator implements to supply them.
package catalog

import (
	"fmt"
	"math"
)

// Section is the closed set of test sections.
type Section string

const (
	SectionQuant   Section = "quant"
	SectionVerbal  Section = "verbal"
	SectionWriting Section = "writing"
)

// AllSections returns the closed set of sections in display order.
func AllSections() []Section {
	return []Section{SectionQuant, SectionVerbal, SectionWriting}
}

func (s Section) valid() bool {
	switch s {
	case SectionQuant, SectionVerbal, SectionWriting:
		return true
	default:
		return false
	}
}

// ItemKind discriminates the shape of an item's answer payload. Items are
// modeled as a tagged variant rather than one struct with optional fields
// for every section: a single-select quant/verbal item carries a choice
// list and one correct index, a multi-select item carries a small set of
// equivalent correct indices, and an essay item carries only a prompt —
// essay scoring is out of scope, so the core never evaluates its
// correctness.
type ItemKind string

const (
	KindSingleSelect ItemKind = "single_select"
	KindMultiSelect  ItemKind = "multi_select"
	KindEssay        ItemKind = "essay"
)

// IRTParams is the 3PL parameter triple for one item.
type IRTParams struct {
	A float64 // discrimination, [0.3, 3.0]
	B float64 // difficulty, [-4, 4]
	C float64 // guessing, [0, 1)
}

// Finite reports whether all three parameters are finite numbers. The IRT
// engine treats a non-finite item as zero-information rather than erroring.
func (p IRTParams) Finite() bool {
	return !math.IsNaN(p.A) && !math.IsInf(p.A, 0) &&
		!math.IsNaN(p.B) && !math.IsInf(p.B, 0) &&
		!math.IsNaN(p.C) && !math.IsInf(p.C, 0)
}

func (p IRTParams) validate() error {
	if p.A < 0.3 || p.A > 3.0 {
		return fmt.Errorf("irt: a=%v out of range [0.3, 3.0]", p.A)
	}
	if p.B < -4 || p.B > 4 {
		return fmt.Errorf("irt: b=%v out of range [-4, 4]", p.B)
	}
	if p.C < 0 || p.C >= 1 {
		return fmt.Errorf("irt: c=%v out of range [0, 1)", p.C)
	}
	return nil
}

// DefaultIRTParams returns a=1, b=0, c=1/numChoices, a neutral default
// triple for an item with the given number of answer choices.
func DefaultIRTParams(numChoices int) IRTParams {
	c := 0.0
	if numChoices > 0 {
		c = 1.0 / float64(numChoices)
	}
	return IRTParams{A: 1, B: 0, C: c}
}

// Item is an immutable description of one test item.
type Item struct {
	ID                 string
	Section            Section
	Kind               ItemKind
	Choices            []string // populated for single/multi select
	CorrectIndex       int      // single-select: the one correct index
	CorrectIndexSet    []int    // multi-select: the set of equivalent correct indices
	PrimarySubskill    string
	SecondarySubskills []string
	DifficultyTier     int // 1-5
	TimeBenchmarkSecs  int
	IRT                IRTParams

	// PassageID references a shared reading passage by identifier for
	// bundled verbal items. Empty for standalone items. Resolving the
	// passage is the caller's job via CatalogReader.FetchByID — Item never
	// holds a pointer to the passage itself, so no question<->passage
	// cycle is ever materialized.
	PassageID string
}

// Validate checks the structural invariants from the data model: the
// correct index (or set) is valid into Choices, the primary subskill is in
// the closed enumeration, and the IRT guessing parameter is in [0, 1).
func (it Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("item: empty ID")
	}
	if !it.Section.valid() {
		return fmt.Errorf("item %s: invalid section %q", it.ID, it.Section)
	}
	if _, err := GetSubskill(it.PrimarySubskill); err != nil {
		return fmt.Errorf("item %s: %w", it.ID, err)
	}
	for _, sec := range it.SecondarySubskills {
		if _, err := GetSubskill(sec); err != nil {
			return fmt.Errorf("item %s: secondary subskill: %w", it.ID, err)
		}
	}
	switch it.Kind {
	case KindSingleSelect:
		if it.CorrectIndex < 0 || it.CorrectIndex >= len(it.Choices) {
			return fmt.Errorf("item %s: correct index %d out of range [0,%d)", it.ID, it.CorrectIndex, len(it.Choices))
		}
	case KindMultiSelect:
		if len(it.CorrectIndexSet) == 0 {
			return fmt.Errorf("item %s: multi-select item has no correct indices", it.ID)
		}
		for _, idx := range it.CorrectIndexSet {
			if idx < 0 || idx >= len(it.Choices) {
				return fmt.Errorf("item %s: correct index %d out of range [0,%d)", it.ID, idx, len(it.Choices))
			}
		}
	case KindEssay:
		// No keyed answer to validate.
	default:
		return fmt.Errorf("item %s: unknown kind %q", it.ID, it.Kind)
	}
	if it.DifficultyTier < 1 || it.DifficultyTier > 5 {
		return fmt.Errorf("item %s: difficulty tier %d out of range [1,5]", it.ID, it.DifficultyTier)
	}
	if err := it.IRT.validate(); err != nil {
		return fmt.Errorf("item %s: %w", it.ID, err)
	}
	return nil
}

// IsCorrect reports whether the given choice index (absent for a skip)
// counts as correct for this item. A skip is always treated as incorrect.
func (it Item) IsCorrect(choice *int) bool {
	if choice == nil {
		return false
	}
	switch it.Kind {
	case KindSingleSelect:
		return *choice == it.CorrectIndex
	case KindMultiSelect:
		for _, idx := range it.CorrectIndexSet {
			if idx == *choice {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// TestsSubskill reports whether the item's primary or any secondary
// subskill matches id.
func (it Item) TestsSubskill(id string) bool {
	if it.PrimarySubskill == id {
		return true
	}
	for _, s := range it.SecondarySubskills {
		if s == id {
			return true
		}
	}
	return false
}
