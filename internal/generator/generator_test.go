package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestNewPipelineMissingDependency(t *testing.T) {
	if _, err := NewPipeline("wisecow-no-such-command", "cat"); err == nil {
		t.Fatal("pipeline created despite missing quote command")
	}
	if _, err := NewPipeline("cat", "wisecow-no-such-command"); err == nil {
		t.Fatal("pipeline created despite missing decorator command")
	}
}

func TestPipelineGenerates(t *testing.T) {
	quote := writeScript(t, "quote.sh", `echo "time is an illusion"`)
	p, err := NewPipeline(quote, "cat")
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	out, err := p.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "time is an illusion") {
		t.Fatalf("output missing quote: %q", out)
	}
}

func TestPipelineDecoratorReceivesQuote(t *testing.T) {
	quote := writeScript(t, "quote.sh", `echo moo`)
	decorate := writeScript(t, "decorate.sh", `sed 's/^/< /'`)
	p, err := NewPipeline(quote, decorate)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	out, err := p.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "< moo") {
		t.Fatalf("decorator did not wrap quote: %q", out)
	}
}

func TestPipelineHonorsContext(t *testing.T) {
	quote := writeScript(t, "slow.sh", `sleep 10`)
	p, err := NewPipeline(quote, "cat")
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := p.Generate(ctx); err == nil {
		t.Fatal("generate succeeded past its deadline")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("generate took %v after cancellation", elapsed)
	}
}

func TestPipelineFailingCommand(t *testing.T) {
	quote := writeScript(t, "broken.sh", `exit 3`)
	p, err := NewPipeline(quote, "cat")
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	if _, err := p.Generate(context.Background()); err == nil {
		t.Fatal("generate succeeded despite failing quote command")
	}
}

func TestStaticGenerator(t *testing.T) {
	g := Static{Body: []byte("OK")}
	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != "OK" {
		t.Fatalf("body = %q, want OK", out)
	}
}
