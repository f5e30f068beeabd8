package models

// SEO is a resource's search snippet (meta title + description).
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SEOResource is the updated product or collection returned by a meta
// update.
type SEOResource struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
	SEO    SEO    `json:"seo"`
}
