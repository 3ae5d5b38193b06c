// Package markup reads a referral tree from HTML markup.
//
// Each member is an element whose class list contains referral__grid-item and
// which carries a data-id attribute; data-parent names its parent. The
// element's inner HTML becomes the card content. Inside it, the text of a
// referral__grid-card-user element is used as the label, and a
// referral__grid-card element with the active class marks the member active.
package markup

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/tree"
)

// Class names recognized in the markup.
const (
	ItemClass   = "referral__grid-item"
	CardClass   = "referral__grid-card"
	UserClass   = "referral__grid-card-user"
	ActiveClass = "active"
)

// Read parses r and returns one descriptor per member element, in document
// order.
func Read(r io.Reader) ([]tree.Descriptor, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "parse markup")
	}

	var descs []tree.Descriptor
	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && hasClass(n, ItemClass) {
			if id, ok := attr(n, "data-id"); ok {
				d, err := describe(n, id)
				if err != nil {
					return err
				}
				descs = append(descs, d)
				return nil
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	return descs, nil
}

// ReadFile reads markup from path.
func ReadFile(path string) ([]tree.Descriptor, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func describe(n *html.Node, id string) (tree.Descriptor, error) {
	id = strings.TrimSpace(id)
	if err := errors.ValidateNodeID(id); err != nil {
		return tree.Descriptor{}, err
	}
	parent, _ := attr(n, "data-parent")

	var content bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&content, c); err != nil {
			return tree.Descriptor{}, fmt.Errorf("render %s: %w", id, err)
		}
	}

	d := tree.Descriptor{
		ID:       id,
		ParentID: strings.TrimSpace(parent),
		Content:  strings.TrimSpace(content.String()),
	}
	if user := find(n, UserClass); user != nil {
		d.Label = strings.Join(strings.Fields(text(user)), " ")
	}
	if card := find(n, CardClass); card != nil && hasClass(card, ActiveClass) {
		d.Active = true
	}
	return d, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	return slices.Contains(strings.Fields(v), class)
}

// find returns the first descendant of n carrying class.
func find(n *html.Node, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, class) {
			return c
		}
		if m := find(c, class); m != nil {
			return m
		}
	}
	return nil
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
