package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/classgraph/pkg/cache"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/schema"
)

func billing(t *testing.T) *schema.Catalog {
	t.Helper()
	cat := &schema.Catalog{
		Version: "20260101120000",
		Classes: []schema.Class{
			{Name: "Invoice", Columns: []schema.Column{{Name: "total", Type: "decimal"}},
				Associations: []schema.Association{{Macro: schema.MacroHasMany, Name: "line_items", Target: "LineItem"}}},
			{Name: "LineItem", Associations: []schema.Association{{Macro: schema.MacroBelongsTo, Name: "invoice", Target: "Invoice"}}},
			{Name: "InvoicesController", Kind: schema.KindController, Methods: &schema.Methods{Public: []string{"index"}}},
			{Name: "Payment", Kind: schema.KindStateMachine, States: []string{"open", "settled"},
				Events: []schema.Event{{Name: "settle", From: "open", To: "settled"}}},
		},
	}
	if err := cat.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	return cat
}

// memCache counts cache traffic.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"xmi", false},
		{"json", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !cgerrors.Is(err, cgerrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, cgerrors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateDiagramType(t *testing.T) {
	tests := []struct {
		diagramType string
		wantErr     bool
	}{
		{"models", false},
		{"controllers", false},
		{"states", false},
		{"Models", true},
		{"views", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateDiagramType(tt.diagramType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDiagramType(%q) error = %v, wantErr %v", tt.diagramType, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if o.DiagramType != DiagramModels {
		t.Errorf("DiagramType = %q, want %q", o.DiagramType, DiagramModels)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatDOT {
		t.Errorf("Formats = %v, want [dot]", o.Formats)
	}
	if o.Colors != ColorsNone || o.Seed == nil || *o.Seed != DefaultSeed || o.Scale != DefaultScale {
		t.Errorf("defaults = %q/%v/%v", o.Colors, o.Seed, o.Scale)
	}
	if o.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	o = Options{DiagramType: "Controllers"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if o.DiagramType != DiagramControllers {
		t.Errorf("DiagramType = %q, want lowercased", o.DiagramType)
	}

	bad := []Options{
		{Colors: "rainbow"},
		{Scale: -1},
		{Formats: []string{"gif"}},
		{LinkBase: "ftp://example.com"},
	}
	for _, o := range bad {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("ValidateAndSetDefaults(%+v) should fail", o)
		}
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Scale: 3}
	if got := o.ArtifactKeyOpts(FormatPNG); got.Scale != 3 {
		t.Errorf("png Scale = %v, want 3", got.Scale)
	}
	if got := o.ArtifactKeyOpts(FormatSVG); got.Scale != 0 {
		t.Errorf("svg Scale = %v, want 0", got.Scale)
	}
}

func TestExecuteDiagramTypes(t *testing.T) {
	cat := billing(t)
	tests := []struct {
		diagramType string
		want        []string
		notWant     []string
	}{
		{DiagramModels, []string{"digraph models_diagram {", `"Invoice" [shape=Mrecord`, `"Invoice" -> "LineItem"`}, []string{"InvoicesController", `"open"`}},
		{DiagramControllers, []string{"digraph controllers_diagram {", `"InvoicesController"`}, []string{`"LineItem"`}},
		{DiagramStates, []string{"digraph states_diagram {", `"open" -> "settled"`}, []string{`"Invoice"`}},
	}

	r := NewRunner(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.diagramType, func(t *testing.T) {
			res, err := r.Execute(context.Background(), cat, Options{DiagramType: tt.diagramType})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			doc := string(res.Artifacts[FormatDOT])
			if doc != res.DOT {
				t.Error("dot artifact should equal the generated document")
			}
			for _, w := range tt.want {
				if !strings.Contains(doc, w) {
					t.Errorf("DOT missing %q:\n%s", w, doc)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(doc, w) {
					t.Errorf("DOT should not contain %q:\n%s", w, doc)
				}
			}
		})
	}
}

func TestExecuteStats(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), billing(t), Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	// has_many plus the invisible reverse belongs_to.
	if res.Stats.NodeCount != 2 || res.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v, want 2 nodes and 2 edges", res.Stats)
	}
	if res.DOTHash != cache.Hash([]byte(res.DOT)) {
		t.Error("DOTHash should hash the DOT document")
	}
	if res.Walk.SchemaVersion != "20260101120000" {
		t.Errorf("SchemaVersion = %q", res.Walk.SchemaVersion)
	}
}

func TestExecuteXMIUnsupported(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), billing(t), Options{Formats: []string{FormatXMI}})
	if !cgerrors.Is(err, cgerrors.ErrCodeUnsupported) {
		t.Fatalf("Execute(xmi) error = %v, want UNSUPPORTED", err)
	}
}

func TestExecuteNilCatalog(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), nil, Options{}); !cgerrors.Is(err, cgerrors.ErrCodeInvalidInput) {
		t.Errorf("Execute(nil) error = %v, want INVALID_INPUT", err)
	}
}

func TestExecuteBadFilter(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), billing(t), Options{Filter: []string{"(("}})
	if !cgerrors.Is(err, cgerrors.ErrCodeInvalidInput) {
		t.Errorf("Execute(bad filter) error = %v, want INVALID_INPUT", err)
	}
}

func TestValidateAndSetDefaultsKeepsZeroSeed(t *testing.T) {
	zero := uint64(0)
	o := Options{Colors: ColorsSeeded, Seed: &zero}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if *o.Seed != 0 {
		t.Errorf("Seed = %d, want 0", *o.Seed)
	}
}

func TestRenderCachesArtifacts(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatDOT, FormatSVG}}

	first, err := r.Execute(ctx, billing(t), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if !strings.Contains(string(first.Artifacts[FormatSVG]), "<svg") {
		t.Errorf("svg artifact = %.80q", first.Artifacts[FormatSVG])
	}
	if mc.sets != 1 {
		t.Errorf("sets = %d, want 1 (dot is never cached)", mc.sets)
	}

	second, err := r.Execute(ctx, billing(t), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if string(second.Artifacts[FormatSVG]) != string(first.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, billing(t), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
	if mc.sets != 2 {
		t.Errorf("sets = %d, want 2", mc.sets)
	}
}

func TestRenderDOTOnlyIsNotAHit(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	for _, c := range []cache.Cache{mc, cache.NewNullCache()} {
		r.Cache = c
		artifacts, hit, err := r.RenderWithCacheInfo(context.Background(), "digraph x {}\n", Options{Formats: []string{FormatDOT}})
		if err != nil {
			t.Fatalf("RenderWithCacheInfo() error: %v", err)
		}
		if hit {
			t.Errorf("%T: dot-only render reported a cache hit", c)
		}
		if string(artifacts[FormatDOT]) != "digraph x {}\n" {
			t.Errorf("dot artifact = %q", artifacts[FormatDOT])
		}
	}
	if mc.gets != 0 || mc.sets != 0 {
		t.Errorf("gets = %d, sets = %d, want no cache traffic", mc.gets, mc.sets)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner(nil, nil, nil) = %+v", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
