/*
 * hellofs - a writable single-file FUSE filesystem
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */
package fs

import (
	"os"
	"time"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
)

// The inode universe is fixed for the lifetime of the process: the root
// directory and the single regular file below it. Inodes are never reused
// or invalidated.
const (
	rootInode fuseops.InodeID = fuseops.RootInodeID + iota
	helloInode
)

const helloName = "hello.txt"

// attrTTL bounds how long the kernel may reuse a returned entry or attribute
// record without asking again. Size is synthesized fresh on every query, so a
// client holding a still-valid cached record across a write observes a stale
// size until the record expires; that window belongs to the caching layer,
// not to the handler.
const attrTTL = 1 * time.Second

func rootAttributes(uid, gid uint32) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Nlink: 2,
		Mode:  0755 | os.ModeDir,
		Uid:   uid,
		Gid:   gid,
	}
}

func helloAttributes(
	uid uint32,
	gid uint32,
	size uint64,
	now time.Time) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Size:  size,
		Nlink: 1,
		Mode:  0644,
		Atime: now,
		Mtime: now,
		Ctime: now,
		Uid:   uid,
		Gid:   gid,
	}
}

// helloDirents is the exhaustive root listing. Offset on each entry is the
// 1-based position the kernel resumes from after consuming it.
var helloDirents = []fuseutil.Dirent{
	{
		Offset: 1,
		Inode:  rootInode,
		Name:   ".",
		Type:   fuseutil.DT_Directory,
	},
	{
		Offset: 2,
		Inode:  rootInode,
		Name:   "..",
		Type:   fuseutil.DT_Directory,
	},
	{
		Offset: 3,
		Inode:  helloInode,
		Name:   helloName,
		Type:   fuseutil.DT_File,
	},
}
