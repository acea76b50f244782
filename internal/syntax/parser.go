//go:build cgo

package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Parser wraps tree-sitter for parsing expanded Rust source.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter parser configured for Rust.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Parser{
		parser: p,
	}
}

// Parse parses source code and returns the CST root node.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("source contains syntax errors")
	}

	return root, nil
}

// IsAvailable returns whether Rust parsing is available.
func IsAvailable() bool {
	return true
}
