package catalog

import "testing"

func sampleItem(id string, subskill string) Item {
	return Item{
		ID:              id,
		Section:         SectionQuant,
		Kind:            KindSingleSelect,
		Choices:         []string{"a", "b", "c", "d"},
		CorrectIndex:    1,
		PrimarySubskill: subskill,
		DifficultyTier:  3,
		IRT:             DefaultIRTParams(4),
	}
}

func TestItem_Validate_OK(t *testing.T) {
	it := sampleItem("q1", "quant.arithmetic")
	if err := it.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestItem_Validate_BadCorrectIndex(t *testing.T) {
	it := sampleItem("q1", "quant.arithmetic")
	it.CorrectIndex = 9
	if err := it.Validate(); err == nil {
		t.Fatal("expected error for out-of-range correct index")
	}
}

func TestItem_Validate_UnknownSubskill(t *testing.T) {
	it := sampleItem("q1", "not-a-subskill")
	if err := it.Validate(); err == nil {
		t.Fatal("expected error for unknown subskill")
	}
}

func TestItem_Validate_BadIRT(t *testing.T) {
	it := sampleItem("q1", "quant.arithmetic")
	it.IRT.C = 1.2
	if err := it.Validate(); err == nil {
		t.Fatal("expected error for c out of range")
	}
}

func TestItem_IsCorrect(t *testing.T) {
	it := sampleItem("q1", "quant.arithmetic")
	one := 1
	zero := 0
	if !it.IsCorrect(&one) {
		t.Error("expected choice 1 to be correct")
	}
	if it.IsCorrect(&zero) {
		t.Error("expected choice 0 to be incorrect")
	}
	if it.IsCorrect(nil) {
		t.Error("expected skip (nil choice) to be incorrect")
	}
}

func TestItem_TestsSubskill(t *testing.T) {
	it := sampleItem("q1", "quant.arithmetic")
	it.SecondarySubskills = []string{"quant.algebra"}
	if !it.TestsSubskill("quant.arithmetic") || !it.TestsSubskill("quant.algebra") {
		t.Error("expected both primary and secondary subskill matches")
	}
	if it.TestsSubskill("quant.geometry") {
		t.Error("did not expect unrelated subskill to match")
	}
}

func TestDefaultIRTParams(t *testing.T) {
	p := DefaultIRTParams(4)
	if p.A != 1 || p.B != 0 || p.C != 0.25 {
		t.Errorf("got %+v, want a=1 b=0 c=0.25", p)
	}
}

func TestMemoryReader_FetchBySubskills(t *testing.T) {
	items := []Item{
		sampleItem("q1", "quant.arithmetic"),
		sampleItem("q2", "quant.algebra"),
	}
	r, err := NewMemoryReader(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := r.FetchBySubskills(nil, map[string]bool{"quant.algebra": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "q2" {
		t.Errorf("got %+v, want only q2", got)
	}
}

func TestMemoryReader_DuplicateID(t *testing.T) {
	items := []Item{sampleItem("q1", "quant.arithmetic"), sampleItem("q1", "quant.algebra")}
	if _, err := NewMemoryReader(items); err == nil {
		t.Fatal("expected error for duplicate item id")
	}
}

func TestGetSubskill_Unknown(t *testing.T) {
	if _, err := GetSubskill("bogus"); err == nil {
		t.Fatal("expected error for unknown subskill")
	}
}

func TestBySection(t *testing.T) {
	subs := BySection(SectionQuant)
	if len(subs) == 0 {
		t.Fatal("expected quant subskills")
	}
	for _, s := range subs {
		if s.Section != SectionQuant {
			t.Errorf("got section %q in quant group", s.Section)
		}
	}
}
