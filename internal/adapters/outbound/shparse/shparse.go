// Package shparse checks shell syntax with the tree-sitter bash grammar.
package shparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// Checker implements domain.SyntaxChecker. A tree-sitter parser is not safe
// for concurrent use, so each call builds its own.
type Checker struct{}

func New() *Checker {
	return &Checker{}
}

func (c *Checker) CheckSyntax(ctx context.Context, source []byte) (domain.SyntaxReport, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(bash.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		return domain.SyntaxReport{}, fmt.Errorf("parsing shell source: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return domain.SyntaxReport{}, fmt.Errorf("no root node in parse tree")
	}
	if !root.HasError() {
		return domain.SyntaxReport{Valid: true}, nil
	}

	bad := firstError(root)
	if bad == nil {
		return domain.SyntaxReport{Valid: false, Line: 1, Message: "unparseable shell source"}, nil
	}
	return domain.SyntaxReport{
		Valid:   false,
		Line:    int(bad.StartPoint().Row) + 1,
		Message: describe(bad, source),
	}, nil
}

// firstError returns the earliest ERROR or MISSING node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

func describe(n *sitter.Node, source []byte) string {
	if n.IsMissing() {
		return fmt.Sprintf("missing %q", n.Type())
	}
	text := n.Content(source)
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	if text == "" {
		return "unexpected end of input"
	}
	return fmt.Sprintf("unexpected %q", text)
}
