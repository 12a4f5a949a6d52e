// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import "sync"

// A filesysLock serializes every call into the file system,
// which is not reentrant. The mutex is created on first use;
// the sync.Once makes that safe when several processes trap at once.
//
// The lock is held only around file system calls, never while
// validating user memory.
type filesysLock struct {
	once sync.Once
	mu   *sync.Mutex
}

func (l *filesysLock) acquire() {
	l.once.Do(func() {
		l.mu = new(sync.Mutex)
	})
	l.mu.Lock()
}

func (l *filesysLock) release() {
	l.mu.Unlock()
}

// withFS runs fn holding the file system lock.
func (sys *System) withFS(fn func()) {
	sys.fslock.acquire()
	defer sys.fslock.release()
	fn()
}
