package main

import (
	"fmt"

	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// buildPage renders a titled list under <body> through r. The same call
// sequence is used for every renderer variant.
func buildPage(r renderer.Renderer, title string, items []string) error {
	body, err := renderer.SelectRootElement(r, "body")
	if err != nil {
		return err
	}
	main, err := renderer.CreateElement(r, "main", "")
	if err != nil {
		return err
	}
	if err := renderer.AddClass(r, main, "page"); err != nil {
		return err
	}

	h1, err := renderer.CreateElement(r, "h1", "")
	if err != nil {
		return err
	}
	heading, err := renderer.CreateText(r, title)
	if err != nil {
		return err
	}
	if err := renderer.AppendChild(r, h1, heading); err != nil {
		return err
	}
	if err := renderer.AppendChild(r, main, h1); err != nil {
		return err
	}

	list, err := renderer.CreateElement(r, "ul", "")
	if err != nil {
		return err
	}
	for i, item := range items {
		li, err := listItem(r, i, item)
		if err != nil {
			return err
		}
		if err := renderer.AppendChild(r, list, li); err != nil {
			return err
		}
	}
	if err := renderer.AppendChild(r, main, list); err != nil {
		return err
	}

	anchor, err := renderer.CreateComment(r, "end")
	if err != nil {
		return err
	}
	if err := renderer.AppendChild(r, main, anchor); err != nil {
		return err
	}
	return renderer.AppendChild(r, body, main)
}

func listItem(r renderer.Renderer, i int, item string) (rnode.Element, error) {
	li, err := renderer.CreateElement(r, "li", "")
	if err != nil {
		return nil, err
	}
	if err := renderer.SetAttribute(r, li, "data-index", fmt.Sprint(i), ""); err != nil {
		return nil, err
	}
	if i%2 == 1 {
		if err := renderer.SetStyle(r, li, "background", "#eee", 0); err != nil {
			return nil, err
		}
	}
	text, err := renderer.CreateText(r, item)
	if err != nil {
		return nil, err
	}
	if err := renderer.AppendChild(r, li, text); err != nil {
		return nil, err
	}
	return li, nil
}

// buildRows appends n <div> rows, each holding one text node, under
// <body>.
func buildRows(r renderer.Renderer, n int) error {
	body, err := renderer.SelectRootElement(r, "body")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		div, err := renderer.CreateElement(r, "div", "")
		if err != nil {
			return err
		}
		text, err := renderer.CreateText(r, fmt.Sprint(i))
		if err != nil {
			return err
		}
		if err := renderer.AppendChild(r, div, text); err != nil {
			return err
		}
		if err := renderer.AppendChild(r, body, div); err != nil {
			return err
		}
	}
	return nil
}
