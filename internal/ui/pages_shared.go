package ui

import (
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"sheetmap/internal/domain"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Overview", Href: "/ui", Key: "home"},
	{Label: "Input dataset", Href: "/ui/datasets/input", Key: "input"},
	{Label: "Output dataset", Href: "/ui/datasets/output", Key: "output"},
	{Label: "Mappings", Href: "/ui/mappings", Key: "mappings"},
	{Label: "Lookup tables", Href: "/ui/lookups", Key: "lookups"},
	{Label: "Rules", Href: "/ui/rules", Key: "rules"},
}

func head(title string) Node {
	return Head(
		Meta(Charset("utf-8")),
		Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
		TitleEl(Text(title+" | sheetmap")),
		Link(Rel("icon"), Href("data:,")),
		Link(Rel("stylesheet"), Href("/ui/static/app.css")),
	)
}

func appPage(title, active string, principal domain.ContextPrincipal, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		nav = append(nav, A(Href(item.Href), If(item.Key == active, Class("active")), Text(item.Label)))
	}
	return HTML(
		Lang("en"),
		head(title),
		Body(
			Main(
				Class("layout"),
				Aside(
					Class("sidebar"),
					Strong(Text("sheetmap")),
					P(Class("muted"), Text("Signed in as "+principal.Name)),
					Nav(Group(nav)),
				),
				Section(
					Class("main"),
					H1(Text(title)),
					Group(body),
				),
			),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		head(title),
		Body(
			Main(
				Class("main"),
				H1(Text(title)),
				P(Text(message)),
				P(A(Href("/ui"), Text("Back to overview"))),
			),
		),
	)
}

// searchForm filters the current page by a case-insensitive substring.
func searchForm(q string) Node {
	return Form(
		Class("search"),
		Method("get"),
		Input(Type("search"), Name("q"), Value(q), Placeholder("Filter rows")),
		Button(Type("submit"), Text("Filter")),
	)
}

// recordTable renders records under headers. Missing cells render blank.
func recordTable(headers []string, rows []domain.Record) Node {
	if len(headers) == 0 {
		return P(Class("muted"), Text("No data."))
	}
	ths := make([]Node, 0, len(headers))
	for _, h := range headers {
		ths = append(ths, Th(Text(h)))
	}
	trs := make([]Node, 0, len(rows))
	for _, r := range rows {
		tds := make([]Node, 0, len(headers))
		for _, h := range headers {
			v, ok := r[h]
			if !ok || v == nil {
				tds = append(tds, Td(Class("empty")))
				continue
			}
			tds = append(tds, Td(Text(domain.FormatValue(v))))
		}
		trs = append(trs, Tr(Group(tds)))
	}
	return Table(
		Class("grid"),
		THead(Tr(Group(ths))),
		TBody(Group(trs)),
	)
}

// filterRecords keeps rows with any cell containing q, case-insensitively.
func filterRecords(headers []string, rows []domain.Record, q string) []domain.Record {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return rows
	}
	out := make([]domain.Record, 0, len(rows))
	for _, r := range rows {
		for _, h := range headers {
			if v, ok := r[h]; ok && strings.Contains(strings.ToLower(domain.FormatValue(v)), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
