package program

// Asset is one downloadable artifact attached to a release.
type Asset struct {
	// Name is the artifact filename.
	Name string `json:"name"`
	// DownloadURL is the direct download location.
	DownloadURL string `json:"browser_download_url"`
	// Size is the artifact size in bytes as reported by the platform.
	Size int64 `json:"size"`
}

// Release is the catalog entry for the most recent published release of one repository.
type Release struct {
	// TagName is the git tag the release was published from.
	TagName string `json:"tag_name"`
	// Assets are kept in platform order.
	Assets []Asset `json:"assets"`
}
