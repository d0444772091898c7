package article

// Record is one entry of the article index. Field order is the
// serialized key order.
type Record struct {
	Title        string   `yaml:"title" json:"title"`
	Date         string   `yaml:"date" json:"date"`
	Tags         []string `yaml:"tags" json:"tags"`
	Categories   []string `yaml:"categories" json:"categories"`
	Excerpt      string   `yaml:"excerpt" json:"excerpt"`
	Permalink    string   `yaml:"permalink" json:"permalink"`
	Author       string   `yaml:"author,omitempty" json:"author,omitempty"`
	CoverImg     string   `yaml:"cover_img,omitempty" json:"cover_img,omitempty"`
	ThumbnailImg string   `yaml:"thumbnail_img,omitempty" json:"thumbnail_img,omitempty"`

	Slug string `yaml:"-" json:"slug,omitempty"`
}
