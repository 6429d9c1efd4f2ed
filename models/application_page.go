package models

// PageType is the kind of Easy Apply form page currently shown.
type PageType string

const (
	PageUpload    PageType = "upload"
	PageContact   PageType = "contact"
	PageQuestions PageType = "questions"
	PageReview    PageType = "review"
	PageUnknown   PageType = "unknown"
)

// PageClassification is recomputed from the live page on every workflow step.
type PageClassification struct {
	Type  PageType `json:"type"`
	Title string   `json:"title"`
}
