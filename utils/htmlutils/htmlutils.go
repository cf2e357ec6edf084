// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
//
// Some of the USIG/EPOK endpoints answer with an HTML page (a portal redirect, a
// maintenance notice, a proxy error) instead of JSON. These helpers extract
// something short enough to be shown in a diagnostic.
package htmlutils

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Node2string collects the text nodes below n, separated by a single space.
func Node2string(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}

		return
	}

	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		Node2string(child, sb)
	}
}

// AsNode parses r as an HTML document, honouring the charset in contentType.
func AsNode(r io.Reader, contentType string) (*html.Node, error) {
	rr, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}

	n, err := html.Parse(rr)
	if err != nil {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

func find(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, name) {
		return n
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := find(child, name); found != nil {
			return found
		}
	}

	return nil
}

// Summary returns the document title or, when there is none, the beginning of its
// body text. At most maxChars characters are returned.
func Summary(n *html.Node, maxChars int) string {
	var sb strings.Builder

	if title := find(n, "title"); title != nil {
		Node2string(title, &sb)
	}

	if sb.Len() == 0 {
		if body := find(n, "body"); body != nil {
			Node2string(body, &sb)
		}
	}

	s := sb.String()
	if r := []rune(s); len(r) > maxChars {
		s = string(r[:maxChars]) + "…"
	}

	return s
}
