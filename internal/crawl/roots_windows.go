//go:build windows

package crawl

import "golang.org/x/sys/windows"

// VolumeRoots returns every logical drive ("C:\", "D:\", ...).
func VolumeRoots() []string {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return []string{`C:\`}
	}
	var roots []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		roots = append(roots, string(rune('A'+i))+`:\`)
	}
	return roots
}
