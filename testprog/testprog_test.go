// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package testprog

import (
	"bytes"
	"slices"
	"testing"

	"rsc.io/pintos/userprog"
)

func run(t *testing.T, tt *Test) string {
	t.Helper()
	d, err := userprog.NewDisk(userprog.FS)
	if err != nil {
		t.Fatal(err)
	}
	sys := userprog.NewSystem(d)
	var con bytes.Buffer
	sys.Console = &con
	Register(sys)
	p, err := sys.Start(tt.Command())
	if err != nil {
		t.Fatal(err)
	}
	sys.Wait()
	<-p.Done()
	for _, name := range d.Names() {
		if !sys.Halted() && d.OpenCount(name) != 0 {
			t.Errorf("%s left open", name)
		}
	}
	return con.String()
}

func TestPrograms(t *testing.T) {
	for i := range Tests {
		tt := &Tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			if have := run(t, tt); have != tt.Want {
				t.Errorf("console:\nhave:\n%s\nwant:\n%s", have, tt.Want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if !slices.IsSorted(names) || len(names) != len(Tests) {
		t.Fatalf("Names() = %q", names)
	}
	seen := make(map[string]bool)
	for _, c := range children {
		seen[c.Name] = true
	}
	for _, name := range names {
		if seen[name] {
			t.Errorf("duplicate program %s", name)
		}
		seen[name] = true
		if Lookup(name) == nil {
			t.Errorf("Lookup(%s) = nil", name)
		}
	}
	if Lookup("no-such-test") != nil {
		t.Errorf("Lookup found a missing test")
	}
}
