// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

/*
 * system call numbers
 */
const (
	SYS_HALT     = 0  /* halt the operating system */
	SYS_EXIT     = 1  /* terminate this process */
	SYS_EXEC     = 2  /* start another process */
	SYS_WAIT     = 3  /* wait for a child process to die */
	SYS_CREATE   = 4  /* create a file */
	SYS_REMOVE   = 5  /* delete a file */
	SYS_OPEN     = 6  /* open a file */
	SYS_FILESIZE = 7  /* obtain a file's size */
	SYS_READ     = 8  /* read from a file */
	SYS_WRITE    = 9  /* write to a file */
	SYS_SEEK     = 10 /* change position in a file */
	SYS_TELL     = 11 /* report current position in a file */
	SYS_CLOSE    = 12 /* close a file */
	NSYSCALL     = 13
)

/*
 * descriptors
 */
const (
	STDIN_FILENO  = 0
	STDOUT_FILENO = 1
	FirstFD       = 2  /* first descriptor handed out by open */
	CloseAll      = -1 /* internal: close every descriptor */
)

const (
	MaxArgs  = 3   /* most words any call takes */
	NOFILE   = 128 /* default max open files per process */
	ExitFail = -1  /* status of a process killed by the kernel */
)
