package domain

// DownloadItem is one row of the download manifest: which invoice to fetch
// and the preferred local file name for the rendered document.
type DownloadItem struct {
	DocNumber string
	FileName  string
}
