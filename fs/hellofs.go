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
	"context"
	"fmt"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
	log "github.com/sirupsen/logrus"
)

type helloFS struct {
	fuseutil.NotImplementedFileSystem

	uid uint32
	gid uint32

	Clock timeutil.Clock

	logger *log.Logger

	mu syncutil.InvariantMutex

	// The live data of hello.txt, empty at mount. Mutated only by WriteFile,
	// and only ever grows.
	//
	// GUARDED_BY(mu)
	contents []byte

	// The next file handle to mint. Handles are advisory: nothing maps them
	// back to state, and they are never reclaimed or validated.
	//
	// GUARDED_BY(mu)
	nextHandle fuseops.HandleID
}

// NewHelloFS creates a file system serving a root directory containing a
// single writable file "hello.txt", whose content starts empty and lives in
// memory for the lifetime of the mount.
func NewHelloFS(
	uid uint32,
	gid uint32,
	logger *log.Logger) (fuse.Server, error) {
	fs := newHelloFS(uid, gid, logger, timeutil.RealClock())
	return fuseutil.NewFileSystemServer(fs), nil
}

func newHelloFS(
	uid uint32,
	gid uint32,
	logger *log.Logger,
	clock timeutil.Clock) *helloFS {
	fs := &helloFS{
		uid:    uid,
		gid:    gid,
		Clock:  clock,
		logger: logger,
	}
	fs.mu = syncutil.NewInvariantMutex(fs.checkInvariants)

	return fs
}

func (fs *helloFS) checkInvariants() {
	// The listing is fixed; make sure nothing disturbed its resume offsets or
	// pointed an entry outside the inode universe.
	for i, d := range helloDirents {
		if d.Offset != fuseops.DirOffset(i+1) {
			panic(fmt.Sprintf("dirent %q has resume offset %d", d.Name, d.Offset))
		}
		if d.Inode != rootInode && d.Inode != helloInode {
			panic(fmt.Sprintf("dirent %q outside the inode universe", d.Name))
		}
	}
}

// LOCKS_REQUIRED(fs.mu)
func (fs *helloFS) helloAttrs() fuseops.InodeAttributes {
	return helloAttributes(
		fs.uid, fs.gid, uint64(len(fs.contents)), fs.Clock.Now())
}

func (fs *helloFS) StatFS(
	ctx context.Context,
	op *fuseops.StatFSOp) error {
	return nil
}

func (fs *helloFS) LookUpInode(
	ctx context.Context,
	op *fuseops.LookUpInodeOp) error {
	fs.logger.WithFields(log.Fields{
		"parent": op.Parent,
		"name":   op.Name,
	}).Debug("lookup")

	if op.Parent != rootInode || op.Name != helloName {
		return fuse.ENOENT
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	op.Entry.Child = helloInode
	op.Entry.Generation = 0
	op.Entry.Attributes = fs.helloAttrs()
	op.Entry.AttributesExpiration = fs.Clock.Now().Add(attrTTL)
	op.Entry.EntryExpiration = op.Entry.AttributesExpiration

	return nil
}

func (fs *helloFS) GetInodeAttributes(
	ctx context.Context,
	op *fuseops.GetInodeAttributesOp) error {
	fs.logger.Debugf("getattr inode %d", op.Inode)
	if op.OpContext.Pid == 0 {
		return fuse.EINVAL
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch op.Inode {
	case rootInode:
		op.Attributes = rootAttributes(fs.uid, fs.gid)
	case helloInode:
		op.Attributes = fs.helloAttrs()
	default:
		return fuse.ENOENT
	}
	op.AttributesExpiration = fs.Clock.Now().Add(attrTTL)

	return nil
}

// SetInodeAttributes acknowledges attribute changes without applying any of
// them: the reply always carries freshly synthesized attributes for the
// addressed inode. Truncation and ownership changes are out of scope for
// this file system.
func (fs *helloFS) SetInodeAttributes(
	ctx context.Context,
	op *fuseops.SetInodeAttributesOp) error {
	fs.logger.Debugf("setattr inode %d (ignored)", op.Inode)
	if op.OpContext.Pid == 0 {
		return fuse.EINVAL
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch op.Inode {
	case rootInode:
		op.Attributes = rootAttributes(fs.uid, fs.gid)
	case helloInode:
		op.Attributes = fs.helloAttrs()
	default:
		return fuse.ENOENT
	}
	op.AttributesExpiration = fs.Clock.Now().Add(attrTTL)

	return nil
}

func (fs *helloFS) OpenDir(
	ctx context.Context,
	op *fuseops.OpenDirOp) error {
	if op.Inode != rootInode {
		return fuse.ENOENT
	}
	return nil
}

func (fs *helloFS) ReadDir(
	ctx context.Context,
	op *fuseops.ReadDirOp) error {
	fs.logger.Debugf("readdir inode %d offset %d", op.Inode, op.Offset)

	if op.Inode != rootInode {
		return fuse.ENOENT
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if op.Offset > fuseops.DirOffset(len(helloDirents)) {
		return nil
	}

	// Emit entries starting at the requested position until the kernel's
	// buffer has no room left; the offsets carried on the entries let it
	// resume where we stopped.
	for _, dirent := range helloDirents[op.Offset:] {
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], dirent)
		if n == 0 {
			break
		}
		op.BytesRead += n
	}

	return nil
}

func (fs *helloFS) OpenFile(
	ctx context.Context,
	op *fuseops.OpenFileOp) error {
	if op.Inode != helloInode {
		return fuse.ENOENT
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	op.Handle = fs.nextHandle
	fs.nextHandle++

	fs.logger.Debugf("open inode %d handle %d", op.Inode, op.Handle)
	return nil
}

func (fs *helloFS) ReadFile(
	ctx context.Context,
	op *fuseops.ReadFileOp) error {
	if op.Inode != helloInode {
		return fuse.ENOENT
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	// The handle is not consulted: every read resolves through the inode and
	// sees the live buffer, no matter when the handle was minted.
	if op.Offset >= int64(len(fs.contents)) {
		return nil
	}
	op.BytesRead = copy(op.Dst, fs.contents[op.Offset:])

	fs.logger.Debugf("read %d bytes at offset %d", op.BytesRead, op.Offset)
	return nil
}

// WriteFile overwrites the overlap between op.Data and the current buffer in
// place, then appends whatever remains. The buffer never shrinks. A nil
// return acknowledges the full length of op.Data as written.
func (fs *helloFS) WriteFile(
	ctx context.Context,
	op *fuseops.WriteFileOp) error {
	if op.Inode != helloInode {
		return fuse.ENOENT
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	// A write landing past the current end leaves a zero-filled gap.
	if gap := op.Offset - int64(len(fs.contents)); gap > 0 {
		fs.contents = append(fs.contents, make([]byte, gap)...)
	}

	overlap := copy(fs.contents[op.Offset:], op.Data)
	fs.contents = append(fs.contents, op.Data[overlap:]...)

	fs.logger.Debugf(
		"wrote %d bytes at offset %d, length now %d",
		len(op.Data), op.Offset, len(fs.contents))
	return nil
}
