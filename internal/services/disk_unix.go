//go:build !windows

package services

import (
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// filesystems that are network shares, optical/removable media, images or
// kernel pseudo filesystems
var nonFixedFilesystems = map[string]bool{
	"9p":             true,
	"afpfs":          true,
	"autofs":         true,
	"cd9660":         true,
	"ceph":           true,
	"cifs":           true,
	"devfs":          true,
	"devtmpfs":       true,
	"fuse.glusterfs": true,
	"fuse.rclone":    true,
	"fuse.sshfs":     true,
	"glusterfs":      true,
	"iso9660":        true,
	"nfs":            true,
	"nfs4":           true,
	"nullfs":         true,
	"overlay":        true,
	"smb3":           true,
	"smbfs":          true,
	"squashfs":       true,
	"sshfs":          true,
	"tmpfs":          true,
	"udf":            true,
	"webdav":         true,
}

func isFixedVolume(p disk.PartitionStat) bool {
	if nonFixedFilesystems[strings.ToLower(p.Fstype)] {
		return false
	}
	if strings.HasPrefix(p.Device, "/dev/loop") || strings.HasPrefix(p.Device, "//") {
		return false
	}
	return p.Mountpoint != ""
}
