package monitor

import (
	"strings"

	"github.com/kcidb/kcidb-go/pkg/report"
)

// Checkout is a checkout with the builds and tests stored for it.
type Checkout struct {
	ID     string
	Object report.Object
	Builds []*Build
}

// Build is a build with its tests.
type Build struct {
	ID       string
	Object   report.Object
	Checkout *Checkout
	Tests    []*Test
}

// Test is a single test run.
type Test struct {
	ID     string
	Object report.Object
	Build  *Build
}

// Tests returns the tests of all checkout builds.
func (c *Checkout) Tests() []*Test {
	var out []*Test
	for _, b := range c.Builds {
		out = append(out, b.Tests...)
	}
	return out
}

// Summary describes the checkout in a subject line, such as
// "mainline 0123456789ab".
func (c *Checkout) Summary() string {
	hash := field(c.Object, "git_commit_hash")
	if len(hash) > 12 {
		hash = hash[:12]
	}
	if s := join(field(c.Object, "tree_name"), hash); s != "" {
		return s
	}
	return c.ID
}

// Summary describes the build, such as "x86_64 defconfig on mainline 0123456789ab".
func (b *Build) Summary() string {
	s := join(field(b.Object, "architecture"), field(b.Object, "config_name"))
	if s == "" {
		s = b.ID
	}
	if b.Checkout != nil {
		s += " on " + b.Checkout.Summary()
	}
	return s
}

// Path returns the test path, such as "ltp.syscalls".
func (t *Test) Path() string { return field(t.Object, "path") }

// Status returns the test status, such as "FAIL".
func (t *Test) Status() string { return field(t.Object, "status") }

// Summary describes the test, such as "ltp.syscalls on x86_64 defconfig ...".
func (t *Test) Summary() string {
	s := t.Path()
	if s == "" {
		s = t.ID
	}
	if t.Build != nil {
		s += " on " + t.Build.Summary()
	}
	return s
}

func field(obj report.Object, name string) string {
	s, _ := obj[name].(string)
	return s
}

func join(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
