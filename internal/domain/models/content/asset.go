package content

import "time"

// AttachmentType describes how an asset is attached to content.
type AttachmentType string

const (
	AttachmentTypeNone   AttachmentType = "none"
	AttachmentTypeInline AttachmentType = "inline"
)

// Asset is an uploaded binary (image) tracked by the storage layer.
// Only AttachmentType and AttachmentOwnerID are written by the reference tracker.
type Asset struct {
	ID                string          `json:"id" db:"id"`
	StorageKey        string          `json:"-" db:"storage_key"`
	Filename          string          `json:"filename" db:"filename"`
	MimeType          string          `json:"mime_type" db:"mime_type"`
	SizeBytes         int64           `json:"size_bytes" db:"size_bytes"`
	AttachmentType    *AttachmentType `json:"attachment_type" db:"attachment_type"`
	AttachmentOwnerID *string         `json:"attachment_owner_id" db:"attachment_owner_id"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// IsClaimedBy reports whether ownerID currently claims the asset.
func (a *Asset) IsClaimedBy(ownerID string) bool {
	return a.AttachmentOwnerID != nil && *a.AttachmentOwnerID == ownerID
}

// CleanupResult reports what happened to each asset during owner deletion.
type CleanupResult struct {
	Deleted  []string `json:"deleted"`
	Retained []string `json:"retained"`
}

// AssetURLPrefix is the path under which asset bytes are served.
const AssetURLPrefix = "/api/files/"

// URL returns the reference content uses to embed the asset.
func (a *Asset) URL() string {
	return AssetURLPrefix + a.ID
}
