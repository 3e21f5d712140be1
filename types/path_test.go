package types

import (
	"reflect"
	"testing"
)

func TestPath_Join(t *testing.T) {
	tests := []struct {
		name string
		base Path
		uri  string
		want Path
	}{
		{"root plus repo", Root, "/repo", "/repo"},
		{"repo plus folder path", "/repo", "/sub", "/repo/sub"},
		{"repo root payload path collapses", "/repo", "/", "/repo"},
		{"empty uri collapses", "/repo", "", "/repo"},
		{"missing leading slash added", "/repo", "a.txt", "/repo/a.txt"},
		{"nested child", "/repo/sub", "/b.txt", "/repo/sub/b.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.base.Join(tt.uri); got != tt.want {
				t.Errorf("Join(%q, %q) = %q, want %q", tt.base, tt.uri, got, tt.want)
			}
		})
	}
}

func TestPath_Parent(t *testing.T) {
	tests := []struct {
		path Path
		want Path
	}{
		{"/repo/sub/b.txt", "/repo/sub"},
		{"/repo/sub", "/repo"},
		{"/repo", "/"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := tt.path.Parent(); got != tt.want {
			t.Errorf("Parent(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPath_Ancestors(t *testing.T) {
	tests := []struct {
		path Path
		want []Path
	}{
		{"/repo/sub/b.txt", []Path{"/repo/sub", "/repo", "/"}},
		{"/repo/a.txt", []Path{"/repo", "/"}},
		{"/repo", []Path{"/"}},
		{"/", []Path{"/"}},
	}
	for _, tt := range tests {
		if got := tt.path.Ancestors(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Ancestors(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPath_Repo(t *testing.T) {
	tests := []struct {
		path Path
		want Path
	}{
		{"/repo/sub/b.txt", "/repo"},
		{"/repo", "/repo"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := tt.path.Repo(); got != tt.want {
			t.Errorf("Repo(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPath_Base(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{"/repo/sub/b.txt", "b.txt"},
		{"/repo", "repo"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := tt.path.Base(); got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPath_Segments(t *testing.T) {
	if got := Root.Segments(); got != nil {
		t.Errorf("Segments(/) = %v, want nil", got)
	}
	want := []string{"repo", "sub", "b.txt"}
	if got := Path("/repo/sub/b.txt").Segments(); !reflect.DeepEqual(got, want) {
		t.Errorf("Segments = %v, want %v", got, want)
	}
}

func TestSizeMap_Attribute(t *testing.T) {
	m := NewSizeMap()
	m.Attribute("/repo/a.txt", 10)
	m.Attribute("/repo/sub/b.txt", 5)

	want := SizeMap{"/": 15, "/repo": 15, "/repo/sub": 5}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("got %v, want %v", m, want)
	}
}

func TestSizeMap_TouchPreservesTotal(t *testing.T) {
	m := NewSizeMap()
	m.Attribute("/repo/sub/b.txt", 5)

	// The folder fetch may arrive after files already attributed to it.
	m.Touch("/repo/sub")
	if m["/repo/sub"] != 5 {
		t.Errorf("Touch overwrote accumulated size: got %d, want 5", m["/repo/sub"])
	}

	m.Touch("/repo/empty")
	if got, ok := m["/repo/empty"]; !ok || got != 0 {
		t.Errorf("Touch should create a zero entry, got %d (present=%v)", got, ok)
	}
}

func TestSizeMap_SortedParentsFirst(t *testing.T) {
	m := SizeMap{"/repo2": 1, "/repo/sub": 5, "/": 21, "/repo": 20}
	got := m.Sorted()
	want := []SizeEntry{
		{Path: "/", Size: 21},
		{Path: "/repo", Size: 20},
		{Path: "/repo/sub", Size: 5},
		{Path: "/repo2", Size: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
}
