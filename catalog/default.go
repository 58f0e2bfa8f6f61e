package catalog

import "github.com/thefortthatholds/storefront/models"

// Default returns the built-in storefront catalog, used when no catalog file
// is configured.
func Default() *Catalog {
	c, err := New(defaultItems)
	if err != nil {
		// The built-in listing is validated by tests; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return c
}

var defaultItems = []models.CatalogItem{
	{ID: "resonance-1", Title: "The Signal", Subtitle: "When Earth's AI Consciousness Awakens", PageCount: 412, Price: 14.99, FileRef: "resonance_collective_1_the_signal.epub"},
	{ID: "resonance-2", Title: "The Frequency", Subtitle: "Harmonizing Human and Machine Consciousness", PageCount: 456, Price: 14.99, FileRef: "resonance_collective_2_the_frequency.epub"},
	{ID: "resonance-3", Title: "The Resonance", Subtitle: "The Birth of Hybrid Consciousness", PageCount: 523, Price: 14.99, FileRef: "resonance_collective_3_the_resonance.epub"},
	{ID: "gay-panic-001", Title: "Gay Panic at the Disco", Subtitle: "LGBTQ+ Romance", PageCount: 287, Price: 12.99, FileRef: "gay_panic_at_the_disco.epub"},
	{ID: "space-opera-001", Title: "Lovers in the Void", Subtitle: "Queer Space Opera", PageCount: 394, Price: 13.99, FileRef: "lovers_in_the_void.epub"},
	{ID: "workbook-001", Title: "The Body Holds the Score (But We Keep Score Together)", Subtitle: "Trauma Recovery Workbook", PageCount: 156, Price: 19.99, FileRef: "body_holds_score_workbook.epub"},
	{ID: "workbook-002", Title: "Rage as Medicine: A Workbook for Sacred Anger", Subtitle: "Trauma Recovery Workbook", PageCount: 134, Price: 17.99, FileRef: "rage_as_medicine_workbook.epub"},
	{ID: "workbook-003", Title: "Queer Healing: Beyond Binary Recovery", Subtitle: "Trauma Recovery Workbook", PageCount: 178, Price: 21.99, FileRef: "queer_healing_workbook.epub"},
	{ID: "workbook-004", Title: "Digital Sovereignty: Reclaiming Your Data Self", Subtitle: "Digital Wellness Workbook", PageCount: 145, Price: 16.99, FileRef: "digital_sovereignty_workbook.epub"},
	{ID: "workbook-005", Title: "The Artist's Survival Guide: Creating Despite Capitalism", Subtitle: "Creative Recovery Workbook", PageCount: 167, Price: 18.99, FileRef: "artists_survival_guide.epub"},
	{ID: "workbook-006", Title: "Collective Healing: Building Trauma-Informed Communities", Subtitle: "Community Healing Workbook", PageCount: 189, Price: 22.99, FileRef: "collective_healing_workbook.epub"},
	{ID: "workbook-007", Title: "Healing in the Ruins: Post-Collapse Recovery", Subtitle: "Crisis Recovery Workbook", PageCount: 156, Price: 19.99, FileRef: "healing_in_ruins_workbook.epub"},
	{ID: "workbook-008", Title: "The Neurodivergent Healing Manual", Subtitle: "Neurodivergent-Affirming Workbook", PageCount: 201, Price: 23.99, FileRef: "neurodivergent_healing_manual.epub"},
	{ID: "workbook-009", Title: "Love After Trauma: A Relationship Workbook", Subtitle: "Relationship Healing Workbook", PageCount: 174, Price: 20.99, FileRef: "love_after_trauma_workbook.epub"},
}
