// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

/*
 * exec system call.
 * Start a registered program as a child of p.
 */
func (p *Proc) exec(cmdline string) int32 {
	c, err := p.Sys.spawn(p, cmdline)
	if err != nil {
		p.Sys.logger().Debug("exec", "pid", p.Pid, "cmdline", cmdline, "err", err)
		return -1
	}
	return int32(c.Pid)
}

/*
 * wait system call.
 * Wait for the child pid to exit and collect its status.
 * A pid that is not an unwaited child of p fails at once.
 * Statuses below ExitFail are reported as ExitFail;
 * exit itself stores the status unchanged.
 */
func (p *Proc) wait(pid int) int32 {
	c := p.Children.Find(pid)
	if c == nil {
		if q := p.Sys.lookpid(pid); q != nil {
			p.Sys.logger().Debug("wait", "pid", p.Pid, "target", pid, "err", "not a child", "name", q.Name)
		}
		return -1
	}
	status, ok := c.cell.wait(p.Sys.halted)
	if !ok {
		return -1
	}
	p.Children.Remove(c)
	return clampStatus(status)
}

func clampStatus(status int32) int32 {
	if status < ExitFail {
		return ExitFail
	}
	return status
}
