package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wildlander/launcher/internal/core/domain/feed"
)

func viewHeader(w io.Writer, kind feed.Kind, src feed.Source) {
	fmt.Fprintf(w, "== %s (%s) ==\n", kind, src)
}

func newsRenderer(w io.Writer) feed.Renderer[feed.Post] {
	return feed.RenderFunc[feed.Post](func(v feed.View[feed.Post]) {
		if v.Err != nil {
			fmt.Fprintln(w, v.Kind.ErrorMessage())
			return
		}
		if v.Empty() {
			return
		}
		viewHeader(w, v.Kind, v.Source)
		for _, p := range v.Items {
			date := ""
			if !p.Published.IsZero() {
				date = p.Published.Format(time.DateOnly) + "  "
			}
			fmt.Fprintf(w, "%s%s\n", date, p.Title)
			if len(p.Tags) > 0 {
				fmt.Fprintf(w, "  [%s]\n", strings.Join(p.Tags, ", "))
			}
			if p.URL != "" {
				fmt.Fprintf(w, "  %s\n", p.URL)
			}
		}
	})
}

func patronRenderer(w io.Writer) feed.Renderer[feed.Patron] {
	return feed.RenderFunc[feed.Patron](func(v feed.View[feed.Patron]) {
		if v.Err != nil {
			fmt.Fprintln(w, v.Kind.ErrorMessage())
			return
		}
		if v.Empty() {
			return
		}
		viewHeader(w, v.Kind, v.Source)
		super, regular := feed.SplitByTier(v.Items)
		printTier(w, "Super Patrons", super)
		printTier(w, "Patrons", regular)
	})
}

func printTier(w io.Writer, title string, patrons []feed.Patron) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(patrons) == 0 {
		fmt.Fprintln(w, "  -")
		return
	}
	for _, p := range patrons {
		fmt.Fprintf(w, "  %s\n", p.Name)
	}
}
