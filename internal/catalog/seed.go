package catalog

// Default closed enumeration of subskills, partitioned by section. A host
// application may replace this at process start via SetSubskills before
// any other catalog call; the adaptive core never loads or edits this
// taxonomy itself — bundled seed *content* (items) is an external
// collaborator's job, but the subskill taxonomy is structural data the
// core's invariants depend on.
func init() {
	reg = buildRegistry(defaultSubskills)
}

// SetSubskills replaces the closed enumeration. Intended for tests and for
// a host application that defines its own subskill taxonomy at startup.
func SetSubskills(subskills []Subskill) {
	reg = buildRegistry(subskills)
}

var defaultSubskills = []Subskill{
	// Quant
	{ID: "quant.arithmetic", Section: SectionQuant, DisplayName: "Arithmetic", DiagnosticTarget: 5},
	{ID: "quant.algebra", Section: SectionQuant, DisplayName: "Algebra and Equations", DiagnosticTarget: 5},
	{ID: "quant.geometry", Section: SectionQuant, DisplayName: "Geometry", DiagnosticTarget: 5},
	{ID: "quant.data-analysis", Section: SectionQuant, DisplayName: "Data Analysis", DiagnosticTarget: 5},

	// Verbal
	{ID: "verbal.reading-comprehension", Section: SectionVerbal, DisplayName: "Reading Comprehension", DiagnosticTarget: 5},
	{ID: "verbal.text-completion", Section: SectionVerbal, DisplayName: "Text Completion", DiagnosticTarget: 5},
	{ID: "verbal.sentence-equivalence", Section: SectionVerbal, DisplayName: "Sentence Equivalence", DiagnosticTarget: 5},
	{ID: "verbal.critical-reasoning", Section: SectionVerbal, DisplayName: "Critical Reasoning", DiagnosticTarget: 5},

	// Writing
	{ID: "writing.issue-essay", Section: SectionWriting, DisplayName: "Analyze an Issue", DiagnosticTarget: 5},
	{ID: "writing.argument-essay", Section: SectionWriting, DisplayName: "Analyze an Argument", DiagnosticTarget: 5},
}
