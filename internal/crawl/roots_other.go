//go:build !windows

package crawl

// VolumeRoots returns the filesystem roots to crawl. Unix-like systems have
// a single tree.
func VolumeRoots() []string {
	return []string{"/"}
}
