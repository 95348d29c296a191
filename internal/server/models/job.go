package models

// ThumbnailWidths are the derived sizes produced for every uploaded image,
// in the order they were historically generated. The derived blob naming
// convention <storageKey>_<width> depends on these exact values.
var ThumbnailWidths = []int{500, 250, 100}

// ThumbnailJob is the queue payload enqueued once per image upload.
type ThumbnailJob struct {
	FileID string `json:"fileId"`
	UserID string `json:"userId"`
}
