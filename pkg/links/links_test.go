package links

import (
	"testing"
	"testing/fstest"

	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
)

func TestURL(t *testing.T) {
	project := fstest.MapFS{
		"app/models/post.rb":       {},
		"lib/shop/pricing.rb":      {},
		"app/models/admin/user.rb": {},
	}

	tests := []struct {
		name     string
		resolver *Resolver
		class    string
		want     string
	}{
		{
			name:     "nil resolver",
			resolver: nil,
			class:    "Post",
			want:     "",
		},
		{
			name:     "no base",
			resolver: &Resolver{Roots: ModelRoots},
			class:    "Post",
			want:     "",
		},
		{
			name:     "first root without fs",
			resolver: &Resolver{Base: "https://example.com/blob/main/", Roots: ModelRoots},
			class:    "LineItem",
			want:     "https://example.com/blob/main/app/models/line_item.rb",
		},
		{
			name:     "namespaced",
			resolver: &Resolver{Base: "https://example.com", Roots: ModelRoots, FS: project},
			class:    "Admin::User",
			want:     "https://example.com/app/models/admin/user.rb",
		},
		{
			name:     "probed root",
			resolver: &Resolver{Base: "https://example.com", Roots: ModelRoots, FS: project},
			class:    "Shop::Pricing",
			want:     "https://example.com/lib/shop/pricing.rb",
		},
		{
			name:     "missing falls back to first root",
			resolver: &Resolver{Base: "https://example.com", Roots: ModelRoots, FS: project},
			class:    "Ghost",
			want:     "https://example.com/app/models/ghost.rb",
		},
		{
			name:     "no roots",
			resolver: &Resolver{Base: "file:///src", Ext: ".py"},
			class:    "Post",
			want:     "file:///src/post.py",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resolver.URL(tt.class); got != tt.want {
				t.Errorf("URL(%s) = %q, want %q", tt.class, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	ok := &Resolver{Base: "https://example.com", Roots: ModelRoots}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	badBase := &Resolver{Base: "javascript://x"}
	if err := badBase.Validate(); !cgerrors.Is(err, cgerrors.ErrCodeInvalidInput) {
		t.Errorf("Validate(bad base) error = %v, want INVALID_INPUT", err)
	}

	badRoot := &Resolver{Base: "https://example.com", Roots: []string{"../outside"}}
	if err := badRoot.Validate(); !cgerrors.Is(err, cgerrors.ErrCodeInvalidPath) {
		t.Errorf("Validate(bad root) error = %v, want INVALID_PATH", err)
	}
}
