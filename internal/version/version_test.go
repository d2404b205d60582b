package version

import "testing"

func TestGetCurrentVersion(t *testing.T) {
	cases := []struct {
		mode string
		want string
	}{
		{"dev", Version + "+dev"},
		{"demo", Version + "+demo"},
		{"prod", Version},
	}
	for _, tc := range cases {
		if got := GetCurrentVersion(tc.mode); got != tc.want {
			t.Errorf("GetCurrentVersion(%q) = %q, want %q", tc.mode, got, tc.want)
		}
	}
}

func TestIsVersionGreaterOrEqualThan(t *testing.T) {
	cases := []struct {
		version string
		target  string
		want    bool
	}{
		{"1.0.0", "1.0.0", true},
		{"1.1.0", "1.0.0", true},
		{"1.0.0", "1.1.0", false},
		{"v2.0.0", "1.9.9", true},
		{"0.1.0", "v0.2.0", false},
	}
	for _, tc := range cases {
		if got := IsVersionGreaterOrEqualThan(tc.version, tc.target); got != tc.want {
			t.Errorf("IsVersionGreaterOrEqualThan(%q, %q) = %v, want %v", tc.version, tc.target, got, tc.want)
		}
	}
}
