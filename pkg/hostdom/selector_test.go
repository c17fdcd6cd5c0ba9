package hostdom

import (
	"errors"
	"testing"

	ierrors "github.com/vango-dev/hostrender/internal/errors"
)

func selectorFixture() *Document {
	doc := NewDocument()
	app := doc.NewElement("app-root")
	app.SetAttribute("id", "root")
	list := doc.NewElement("ul")
	list.ClassList().Add("items", "dense")
	for _, v := range []string{"one", "two"} {
		li := doc.NewElement("li")
		li.SetAttribute("data-key", v)
		list.AppendChild(li)
	}
	link := doc.NewElement("a")
	link.SetAttribute("href", "https://example.com/docs")
	link.SetAttribute("lang", "en-US")
	app.AppendChild(list)
	app.AppendChild(link)
	doc.Body().AppendChild(app)
	return doc
}

func TestQuerySelector(t *testing.T) {
	doc := selectorFixture()

	tests := []struct {
		selector string
		want     int
	}{
		{"app-root", 1},
		{"APP-ROOT", 1},
		{"#root", 1},
		{".items", 1},
		{"ul.items.dense", 1},
		{".missing", 0},
		{"li", 2},
		{"*", 8},
		{"[data-key]", 2},
		{"[data-key=two]", 1},
		{`[data-key="one"]`, 1},
		{"[href^=https]", 1},
		{"[href$=docs]", 1},
		{"[href*=example]", 1},
		{"[lang|=en]", 1},
		{"[class~=dense]", 1},
		{"#root li", 2},
		{"#root > li", 0},
		{"ul > li", 2},
		{"body app-root > a", 1},
		{"a, li", 3},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, err := doc.QuerySelectorAll(tt.selector)
			if err != nil {
				t.Fatalf("QuerySelectorAll: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("matched %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestQuerySelectorNotFoundIsNil(t *testing.T) {
	doc := selectorFixture()
	if el := doc.QuerySelector("section"); el != nil {
		t.Errorf("got %v, want nil interface", el)
	}
	if el := doc.QuerySelector("div >"); el != nil {
		t.Errorf("invalid selector returned %v", el)
	}
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{"", "div >", "#", ".", "[", "[a=", "[a=b", "a,", "a!b", "[a~b]"} {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			if err == nil {
				t.Fatal("expected error")
			}
			var he *ierrors.HostError
			if !errors.As(err, &he) || he.Code != "E040" {
				t.Errorf("err = %v, want E040", err)
			}
		})
	}
}

func TestElementQuerySelectorExcludesSelf(t *testing.T) {
	doc := selectorFixture()
	list := doc.QuerySelector("ul").(*Element)
	got, err := list.QuerySelector("ul")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("element QuerySelector matched the element itself")
	}
	first, _ := list.QuerySelector("li")
	if v, _ := first.GetAttribute("data-key"); v != "one" {
		t.Errorf("first li = %q", v)
	}
}
