// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spacelabs

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is one element of the metadata tree: either a leaf carrying a
// value, or an inner element carrying ordered children. A cleared leaf
// keeps its name and loses its value, so consumers that only check key
// presence keep working after de-identification.
type Node struct {
	Name     string
	Value    *string
	Children []*Node
}

// Metadata is the patient/report information block parsed from the XML
// line at the bottom of the abp file.
type Metadata struct {
	Root *Node
}

// ParseMetadata parses the single-line XML metadata block.
func ParseMetadata(line string) (*Metadata, error) {
	dec := xml.NewDecoder(strings.NewReader(line))

	var stack []*Node
	var root *Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing metadata: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else {
				root = node
			}
			stack = append(stack, node)
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			node := stack[len(stack)-1]
			if node.Value == nil {
				node.Value = &text
			} else {
				joined := *node.Value + text
				node.Value = &joined
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("error parsing metadata: unbalanced element %q", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, fmt.Errorf("error parsing metadata: no root element")
	}

	return &Metadata{Root: root}, nil
}

// Encode renders the tree back to its single-line XML form.
func (m *Metadata) Encode() string {
	var buf bytes.Buffer
	encodeNode(&buf, m.Root)
	return buf.String()
}

func encodeNode(buf *bytes.Buffer, n *Node) {
	buf.WriteByte('<')
	buf.WriteString(n.Name)
	buf.WriteByte('>')
	if n.Value != nil {
		xml.EscapeText(buf, []byte(*n.Value))
	}
	for _, child := range n.Children {
		encodeNode(buf, child)
	}
	buf.WriteString("</")
	buf.WriteString(n.Name)
	buf.WriteByte('>')
}

// ClearLeaves nulls every leaf value in the tree while preserving all
// element names. One-way: the original values are not retained.
func (m *Metadata) ClearLeaves() {
	clearNode(m.Root)
}

func clearNode(n *Node) {
	n.Value = nil
	for _, child := range n.Children {
		clearNode(child)
	}
}

// Lookup walks the tree along the given element names and returns the
// leaf value, or "" and false if the path does not exist or the node
// carries no value.
func (m *Metadata) Lookup(path ...string) (string, bool) {
	n := m.Root
	for _, name := range path {
		var next *Node
		for _, child := range n.Children {
			if child.Name == name {
				next = child
				break
			}
		}
		if next == nil {
			return "", false
		}
		n = next
	}
	if n.Value == nil {
		return "", false
	}
	return *n.Value, true
}
