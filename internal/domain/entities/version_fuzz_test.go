package entities

import (
	"testing"
)

// FuzzVersionOrdering checks that version parsing never panics and that
// the ordering is antisymmetric for arbitrary inputs.
//
// Run with: go test -fuzz=FuzzVersionOrdering -fuzztime=30s
func FuzzVersionOrdering(f *testing.F) {
	f.Add("1.0.0", "1.0.0-RC1")
	f.Add("4.1.86.Final", "4.1.100.Final")
	f.Add("2.0-", "2.0.")
	f.Add("", "0")
	f.Add("99999999999999999999", "1")

	f.Fuzz(func(t *testing.T, a, b string) {
		ab := CompareVersions(a, b)
		ba := CompareVersions(b, a)
		if ab != -ba {
			t.Errorf("CompareVersions(%q, %q) = %d but reverse = %d", a, b, ab, ba)
		}
		if CompareVersions(a, a) != 0 {
			t.Errorf("CompareVersions(%q, %q) != 0", a, a)
		}

		r := ParseRelease(a)
		if !r.Matched && (r.Base != "" || r.PreRelease != "") {
			t.Errorf("unmatched release %q carries parts: %+v", a, r)
		}
	})
}
