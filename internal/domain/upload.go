package domain

// Category is one of the fixed upload destinations. Each category is bound
// at startup to its own base directory and size/extension policy.
type Category string

const (
	CategoryBlogPosts Category = "blog-posts"
	CategoryProfiles  Category = "profiles"
)

// Categories lists every valid upload destination.
var Categories = []Category{CategoryBlogPosts, CategoryProfiles}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// UploadRequest carries one user-submitted file through a single
// validate-and-store operation. It is transient; nothing retains it after
// the pipeline returns.
type UploadRequest struct {
	Data          []byte
	Filename      string
	ContentType   string
	Category      Category
	WithThumbnail bool
}

// StoredAsset is the durable result of a successful upload. The owning
// record (post, user) persists the filenames; this struct itself is not
// stored anywhere.
type StoredAsset struct {
	Category          Category
	Filename          string
	ThumbnailFilename string
	Format            string
}
