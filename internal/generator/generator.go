package generator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Generator produces one response body per call. Calls are independent;
// repeated calls may and usually do return different content.
type Generator interface {
	Generate(ctx context.Context) ([]byte, error)
}

// Pipeline runs the two-stage content pipeline: a quote program whose output
// is piped through a decorator program. Both must resolve on PATH before the
// server starts serving.
type Pipeline struct {
	quotePath     string
	decoratorPath string
}

// NewPipeline resolves both commands up front so a missing dependency is a
// startup failure, not a per-connection one.
func NewPipeline(quoteCmd, decoratorCmd string) (*Pipeline, error) {
	qp, err := exec.LookPath(quoteCmd)
	if err != nil {
		return nil, fmt.Errorf("%q not found, install prerequisites: %w", quoteCmd, err)
	}
	dp, err := exec.LookPath(decoratorCmd)
	if err != nil {
		return nil, fmt.Errorf("%q not found, install prerequisites: %w", decoratorCmd, err)
	}
	return &Pipeline{quotePath: qp, decoratorPath: dp}, nil
}

func (p *Pipeline) Generate(ctx context.Context) ([]byte, error) {
	quote := exec.CommandContext(ctx, p.quotePath)
	text, err := quote.Output()
	if err != nil {
		return nil, fmt.Errorf("quote command: %w", err)
	}
	decorate := exec.CommandContext(ctx, p.decoratorPath)
	decorate.Stdin = bytes.NewReader(text)
	out, err := decorate.Output()
	if err != nil {
		return nil, fmt.Errorf("decorate command: %w", err)
	}
	return out, nil
}

// Static always returns the same body.
type Static struct {
	Body []byte
}

func (s Static) Generate(context.Context) ([]byte, error) {
	return s.Body, nil
}
