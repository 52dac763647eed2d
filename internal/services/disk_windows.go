//go:build windows

package services

import (
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/windows"
)

func isFixedVolume(p disk.PartitionStat) bool {
	root := p.Mountpoint
	if root == "" {
		return false
	}
	if !strings.HasSuffix(root, `\`) {
		root += `\`
	}

	path, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return false
	}
	return windows.GetDriveType(path) == windows.DRIVE_FIXED
}
