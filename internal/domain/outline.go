package domain

// OutlineItem is the ephemeral unit of work handed to the generation
// adapters: a page's title, bullet points and optional part label before
// descriptions or images exist. One outline item maps to exactly one
// page, 1:1, by position.
type OutlineItem struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
	Part   string   `json:"part,omitempty"`
}

// OutlineFromPages snapshots the outline items of an ordered page slice.
// The snapshot is taken once at task submission time so that concurrent
// page edits cannot race with an in-flight generation task.
func OutlineFromPages(pages []*Page) []OutlineItem {
	items := make([]OutlineItem, len(pages))
	for i, page := range pages {
		items[i] = page.OutlineItem()
	}
	return items
}
