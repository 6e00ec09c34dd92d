package models

// File is a catalog record for one stored blob. Locator is the storage key
// in the object store; it addresses exactly one blob and never changes once
// set. Only Name is mutable.
type File struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Locator   string `json:"locator"`
	MediaType string `json:"mediaType"`
	PublicURL string `json:"url"`
	OwnerID   string `json:"-"`
}
