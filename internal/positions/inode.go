package positions

import (
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Inode of a path on the given filesystem. In-memory filesystems used by
// tests carry no inodes and report 0.
func InodeOn(fsys afero.Fs, path string) (inode uint64) {
	switch fsys.(type) {
	case *afero.OsFs:
		var stat unix.Stat_t
		if err := unix.Stat(path, &stat); err == nil {
			inode = stat.Ino
		}
	}
	return
}

// Inode of a path, for callers tracking real files
func Inode(path string) (inode uint64, err error) {
	var stat unix.Stat_t
	err = unix.Stat(path, &stat)
	if err != nil {
		return
	}
	inode = stat.Ino
	return
}
