package pipeline

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/providers/assetgen"
)

const sampleDoc = `<html><body>
<section class="hero"><img src="hero.jpg" alt="Team at work" width="1200" height="600"></section>
<div class="about-us" style="background-image: url('bg.png')"><p>Our story</p></div>
<section class="contact"><video poster="poster.jpg" src="intro.mp4"></video></section>
</body></html>`

// fakeGenerator produces deterministic references derived from the original
// reference. Set block to gate each call behind a channel receive, and fail to
// make the next N calls for a given reference return an error.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   []assetgen.GenerateRequest
	block   chan struct{}
	fail    map[string]int
	running int32
	maxSeen int32
}

func (g *fakeGenerator) Generate(ctx context.Context, req assetgen.GenerateRequest) (*assetgen.GeneratedAsset, error) {
	cur := atomic.AddInt32(&g.running, 1)
	defer atomic.AddInt32(&g.running, -1)
	for {
		max := atomic.LoadInt32(&g.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&g.maxSeen, max, cur) {
			break
		}
	}

	g.mu.Lock()
	g.calls = append(g.calls, req)
	block := g.block
	shouldFail := false
	if g.fail != nil && g.fail[req.OriginalReference] > 0 {
		g.fail[req.OriginalReference]--
		shouldFail = true
	}
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if shouldFail {
		return nil, errors.New("generation backend rejected request")
	}
	return &assetgen.GeneratedAsset{Reference: generatedRef(req.OriginalReference)}, nil
}

func generatedRef(original string) string {
	base := path.Base(original)
	ext := path.Ext(base)
	return "/assets/" + strings.TrimSuffix(base, ext) + "-generated" + ext
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *fakeGenerator) callRefs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	refs := make([]string, len(g.calls))
	for i, c := range g.calls {
		refs[i] = c.OriginalReference
	}
	return refs
}

func newTestRun(t *testing.T, doc string, gen assetgen.Generator) *Run {
	t.Helper()
	run, err := NewRun(Config{
		Document:  doc,
		Business:  domain.BusinessContext{Name: "Crumb & Crust", Industry: "bakery", Location: "Lisbon"},
		Keywords:  []string{"artisan", "sourdough"},
		Generator: gen,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	return run
}

func waitDone(t *testing.T, run *Run) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := run.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func waitTerminal(t *testing.T, run *Run) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if run.Terminal() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("run never reached all-processed")
}

func TestRunCompletesAllAssetsSequentially(t *testing.T) {
	gen := &fakeGenerator{}
	run := newTestRun(t, sampleDoc, gen)

	if err := run.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, run)

	if max := atomic.LoadInt32(&gen.maxSeen); max != 1 {
		t.Fatalf("observed %d concurrent generations, want 1", max)
	}
	p := run.Progress()
	if !p.Terminal || p.Completed != 3 || p.Errored != 0 || p.Skipped != 0 {
		t.Fatalf("progress = %+v", p)
	}
	if refs := gen.callRefs(); len(refs) != 3 || refs[0] != "hero.jpg" || refs[1] != "bg.png" || refs[2] != "poster.jpg" {
		t.Fatalf("generation order = %v", refs)
	}

	res, err := run.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Manifest) != 3 {
		t.Fatalf("manifest length = %d", len(res.Manifest))
	}
	for i, want := range []string{"hero.jpg", "bg.png", "poster.jpg"} {
		if res.Manifest[i].OriginalReference != want {
			t.Fatalf("manifest[%d] = %+v", i, res.Manifest[i])
		}
		if res.Manifest[i].Prompt == "" || res.Manifest[i].GeneratedReference == "" {
			t.Fatalf("manifest[%d] incomplete: %+v", i, res.Manifest[i])
		}
	}
	for _, old := range []string{`src="hero.jpg"`, "url('bg.png')", `poster="poster.jpg"`} {
		if strings.Contains(res.FinalDocument, old) {
			t.Fatalf("final document still references %q", old)
		}
	}
	for _, ref := range []string{"/assets/hero-generated.jpg", "/assets/bg-generated.png", "/assets/poster-generated.jpg"} {
		if !strings.Contains(res.FinalDocument, ref) {
			t.Fatalf("final document missing %q", ref)
		}
	}
	if !strings.Contains(res.FinalDocument, "<p>Our story</p>") {
		t.Fatalf("final document lost surrounding markup")
	}
}

func TestStartTwice(t *testing.T) {
	run := newTestRun(t, sampleDoc, &fakeGenerator{})
	if err := run.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := run.Start(context.Background()); !errors.Is(err, domain.ErrAlreadyStarted) {
		t.Fatalf("err = %v, want ErrAlreadyStarted", err)
	}
	waitDone(t, run)
}

func TestRunErrorThenRetryReusesPrompt(t *testing.T) {
	gen := &fakeGenerator{fail: map[string]int{"bg.png": 1}}
	run := newTestRun(t, sampleDoc, gen)

	if err := run.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, run)

	p := run.Progress()
	if p.Completed != 2 || p.Errored != 1 {
		t.Fatalf("progress = %+v", p)
	}
	errored := p.Assets[1]
	if errored.Status != domain.AssetStatusError || errored.ErrorDetail == "" {
		t.Fatalf("asset = %+v", errored)
	}
	if errored.Prompt == "" {
		t.Fatalf("errored asset lost its prompt")
	}
	// An errored asset is terminal, so assembly is already possible; the
	// failed asset just stays out of the manifest.
	partial, err := run.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(partial.Manifest) != 2 {
		t.Fatalf("manifest length = %d", len(partial.Manifest))
	}

	if err := run.Retry(1); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	waitTerminal(t, run)

	p = run.Progress()
	if p.Completed != 3 || p.Errored != 0 {
		t.Fatalf("progress after retry = %+v", p)
	}
	refs := gen.callRefs()
	if len(refs) != 4 || refs[1] != "bg.png" || refs[3] != "bg.png" {
		t.Fatalf("call order = %v", refs)
	}
	gen.mu.Lock()
	first, second := gen.calls[1].Prompt, gen.calls[3].Prompt
	gen.mu.Unlock()
	if first == "" || first != second {
		t.Fatalf("retry prompt differs:\n%q\n%q", first, second)
	}

	res, err := run.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Manifest) != 3 {
		t.Fatalf("manifest length = %d", len(res.Manifest))
	}
}

func TestSkipDiscardsInFlightResponse(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{}, 8)}
	run := newTestRun(t, sampleDoc, gen)

	if err := run.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for gen.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first generation never launched")
		}
		time.Sleep(time.Millisecond)
	}

	if err := run.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	for i := 0; i < 3; i++ {
		gen.block <- struct{}{}
	}
	waitDone(t, run)

	p := run.Progress()
	if p.Skipped != 1 || p.Completed != 2 {
		t.Fatalf("progress = %+v", p)
	}
	if p.Assets[0].Status != domain.AssetStatusSkipped || p.Assets[0].GeneratedReference != "" {
		t.Fatalf("skipped asset = %+v", p.Assets[0])
	}
	if !strings.Contains(p.Document, `src="hero.jpg"`) {
		t.Fatalf("skipped asset was rewritten anyway")
	}
	res, err := run.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Manifest) != 2 {
		t.Fatalf("manifest length = %d, want skipped asset omitted", len(res.Manifest))
	}
}

func TestSkipPendingBeforeStart(t *testing.T) {
	gen := &fakeGenerator{}
	run := newTestRun(t, sampleDoc, gen)

	if err := run.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if err := run.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, run)

	p := run.Progress()
	if p.Skipped != 1 || p.Completed != 2 {
		t.Fatalf("progress = %+v", p)
	}
	if refs := gen.callRefs(); len(refs) != 2 || refs[0] != "bg.png" {
		t.Fatalf("call order = %v", refs)
	}
}

func TestRetryQueuesBehindInFlightRequest(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{}, 8), fail: map[string]int{"hero.jpg": 1}}
	run := newTestRun(t, sampleDoc, gen)

	if err := run.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	gen.block <- struct{}{} // first attempt fails
	deadline := time.Now().Add(5 * time.Second)
	for gen.callCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("second generation never launched")
		}
		time.Sleep(time.Millisecond)
	}

	// Second asset is in flight; the retry must queue, not run concurrently.
	if err := run.Retry(0); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got := run.Progress().Assets[0].Status; got != domain.AssetStatusError {
		t.Fatalf("queued retry changed status early: %v", got)
	}

	for i := 0; i < 3; i++ {
		gen.block <- struct{}{}
	}
	waitTerminal(t, run)

	if max := atomic.LoadInt32(&gen.maxSeen); max != 1 {
		t.Fatalf("observed %d concurrent generations, want 1", max)
	}
	p := run.Progress()
	if p.Completed != 3 || p.Errored != 0 {
		t.Fatalf("progress = %+v", p)
	}
	// The queued retry runs as soon as the in-flight request settles, ahead
	// of the remaining pending asset.
	refs := gen.callRefs()
	if len(refs) != 4 || refs[0] != "hero.jpg" || refs[2] != "hero.jpg" || refs[3] != "poster.jpg" {
		t.Fatalf("call order = %v", refs)
	}
}

func TestRetryValidation(t *testing.T) {
	run := newTestRun(t, sampleDoc, &fakeGenerator{})
	if err := run.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, run)

	if err := run.Retry(99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := run.Retry(0); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestRunWithoutAssets(t *testing.T) {
	run := newTestRun(t, "<html><body><p>No imagery here.</p></body></html>", &fakeGenerator{})

	if !run.Terminal() {
		t.Fatalf("asset-free run should be terminal immediately")
	}
	if err := run.Start(context.Background()); !errors.Is(err, domain.ErrNoAssets) {
		t.Fatalf("err = %v, want ErrNoAssets", err)
	}
	res, err := run.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Manifest) != 0 {
		t.Fatalf("manifest = %v", res.Manifest)
	}
	if !strings.Contains(res.FinalDocument, "No imagery here.") {
		t.Fatalf("document changed: %q", res.FinalDocument)
	}
	waitDone(t, run)
}

func TestNewRunRejectsEmptyDocument(t *testing.T) {
	_, err := NewRun(Config{Document: "   ", Generator: &fakeGenerator{}, Logger: zerolog.Nop()})
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Fatalf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestAssembleBeforeFinish(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{}, 8)}
	run := newTestRun(t, sampleDoc, gen)
	if err := run.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := run.Assemble(); !errors.Is(err, domain.ErrRunNotFinished) {
		t.Fatalf("err = %v, want ErrRunNotFinished", err)
	}
	for i := 0; i < 3; i++ {
		gen.block <- struct{}{}
	}
	waitDone(t, run)
}

func TestAdvanceBeforeStart(t *testing.T) {
	run := newTestRun(t, sampleDoc, &fakeGenerator{})
	if err := run.Advance(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	run, err := m.Create(Config{
		Document:  sampleDoc,
		Business:  domain.BusinessContext{Name: "Crumb & Crust"},
		Generator: &fakeGenerator{},
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := m.Get(run.ID)
	if err != nil || got != run {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := m.Get("unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d", m.Len())
	}
	m.Remove(run.ID)
	if _, err := m.Get(run.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("run not removed")
	}
}
