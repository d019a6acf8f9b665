package email

// PreviewData contains sample template data for rendering every template
// outside of a real send.
//
//	PreviewData["article_event"]["Title"] == "Hello, world"
var PreviewData = map[Template]map[string]string{
	TemplateArticleEvent: {
		"Event":   "created",
		"ID":      "1",
		"Title":   "Hello, world",
		"Content": "The first article.",
		"Author":  "Ada",
	},
}
