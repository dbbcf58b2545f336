package study

// Tip is a single piece of static study advice surfaced to the UI.
type Tip struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

// Resource links out to external reference material.
type Resource struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SeedTips provides the default study tips shipped with the product.
func SeedTips() []Tip {
	return []Tip{
		{ID: "pomodoro", Topic: "focus", Text: "Work in 25-minute blocks with 5-minute breaks. After four blocks, take a longer break."},
		{ID: "active-recall", Topic: "memory", Text: "Close your notes and write down everything you remember, then check what you missed."},
		{ID: "spaced-repetition", Topic: "memory", Text: "Review material after one day, three days, and a week rather than cramming the night before."},
		{ID: "outline-first", Topic: "writing", Text: "Sketch a one-paragraph outline before drafting an essay; it keeps your argument from drifting."},
		{ID: "primary-sources", Topic: "research", Text: "Trace claims back to primary sources early, secondary summaries flatten the interesting detail."},
		{ID: "explain-aloud", Topic: "comprehension", Text: "Explain a concept out loud as if teaching it. Gaps in your understanding show up immediately."},
	}
}

// SeedResources provides the default external resource links.
func SeedResources() []Resource {
	return []Resource{
		{ID: "purdue-owl", Topic: "writing", Title: "Purdue OWL Writing Lab", URL: "https://owl.purdue.edu/"},
		{ID: "sep", Topic: "philosophy", Title: "Stanford Encyclopedia of Philosophy", URL: "https://plato.stanford.edu/"},
		{ID: "jstor", Topic: "research", Title: "JSTOR", URL: "https://www.jstor.org/"},
		{ID: "zotero", Topic: "research", Title: "Zotero citation manager", URL: "https://www.zotero.org/"},
		{ID: "project-gutenberg", Topic: "literature", Title: "Project Gutenberg", URL: "https://www.gutenberg.org/"},
	}
}
