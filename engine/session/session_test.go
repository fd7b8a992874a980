package session

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func TestFSAssetProvider(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/object.wgsl": {Data: []byte("@vertex fn vs_main() {}")},
	}
	p := NewFSAssetProvider(fsys)

	data, err := p.Asset("shaders/object.wgsl")
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if string(data) != "@vertex fn vs_main() {}" {
		t.Errorf("asset contents = %q", data)
	}
}

func TestAssetProviderMissingAsset(t *testing.T) {
	p := NewFSAssetProvider(fstest.MapFS{})

	_, err := p.Asset("shaders/missing.wgsl")
	var loadErr *AssetLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Asset: got %v, want *AssetLoadError", err)
	}
	if loadErr.Name != "shaders/missing.wgsl" {
		t.Errorf("Name = %q, want the requested asset name", loadErr.Name)
	}
	// The underlying read error stays reachable for callers matching on it.
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", err)
	}
}

func TestDepthImageAspectRatio(t *testing.T) {
	tests := []struct {
		name  string
		image *DepthImage
		want  float32
	}{
		{"nil image", nil, 0},
		{"zero height", &DepthImage{Width: 160}, 0},
		{"wide", &DepthImage{Width: 160, Height: 90}, 160.0 / 90.0},
	}
	for _, tt := range tests {
		if got := tt.image.AspectRatio(); got != tt.want {
			t.Errorf("%s: aspect ratio = %v, want %v", tt.name, got, tt.want)
		}
	}
}
