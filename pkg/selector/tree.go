// File: pkg/selector/tree.go
package selector

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children map[string]*treeNode
}

func newTreeNode(name string) *treeNode {
	return &treeNode{name: name, children: map[string]*treeNode{}}
}

func (n *treeNode) isDir() bool {
	return len(n.children) > 0
}

// RenderTree draws files (absolute paths under root) as a directory tree
// headed by root. Paths outside root are listed by their full path at the
// top level.
func RenderTree(root string, files []string) string {
	top := newTreeNode(root)
	for _, file := range files {
		relPath, err := filepath.Rel(root, file)
		if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			relPath = file
		}
		node := top
		for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
			if part == "" {
				continue
			}
			child, ok := node.children[part]
			if !ok {
				child = newTreeNode(part)
				node.children[part] = child
			}
			node = child
		}
	}

	var treeBuilder strings.Builder
	treeBuilder.WriteString(fmt.Sprintf("%s/\n", strings.TrimSuffix(root, string(filepath.Separator))))
	renderChildren(&treeBuilder, top, "")
	return treeBuilder.String()
}

// renderChildren writes directories first, then files, each group sorted
// case-insensitively.
func renderChildren(b *strings.Builder, node *treeNode, prefix string) {
	entries := make([]*treeNode, 0, len(node.children))
	for _, child := range node.children {
		entries = append(entries, child)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isDir() != entries[j].isDir() {
			return entries[i].isDir()
		}
		li, lj := strings.ToLower(entries[i].name), strings.ToLower(entries[j].name)
		if li != lj {
			return li < lj
		}
		return entries[i].name < entries[j].name
	})

	for i, entry := range entries {
		connector := "├── "
		extension := "│   "
		if i == len(entries)-1 {
			connector = "└── "
			extension = "    "
		}

		if entry.isDir() {
			b.WriteString(fmt.Sprintf("%s%s%s/\n", prefix, connector, entry.name))
			renderChildren(b, entry, prefix+extension)
		} else {
			b.WriteString(fmt.Sprintf("%s%s%s\n", prefix, connector, entry.name))
		}
	}
}
