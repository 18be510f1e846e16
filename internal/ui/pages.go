package ui

import (
	"fmt"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"sheetmap/internal/domain"
)

type overviewData struct {
	InputRows, OutputRows int
	InputHeaders          int
	OutputHeaders         int
	Mappings              int
	Lookups               []string
}

func overviewPage(p domain.ContextPrincipal, d overviewData) Node {
	lookupLinks := make([]Node, 0, len(d.Lookups))
	for _, o := range d.Lookups {
		lookupLinks = append(lookupLinks, Li(A(Href(lookupHref(o)), Text(o))))
	}
	return appPage("Overview", "home", p,
		Div(Class("card"),
			H2(Text("Datasets")),
			P(Text(fmt.Sprintf("Input: %d headers, %d rows.", d.InputHeaders, d.InputRows))),
			P(Text(fmt.Sprintf("Output: %d headers, %d rows.", d.OutputHeaders, d.OutputRows))),
		),
		Div(Class("card"),
			H2(Text("Mappings")),
			P(Text(fmt.Sprintf("%d input headers mapped.", d.Mappings))),
		),
		Div(Class("card"),
			H2(Text("Lookup tables")),
			If(len(lookupLinks) == 0, P(Class("muted"), Text("None registered."))),
			Ul(Group(lookupLinks)),
		),
	)
}

func datasetPage(p domain.ContextPrincipal, kind domain.DatasetKind, ds domain.Dataset, q string) Node {
	rows := filterRecords(ds.Headers, ds.Rows, q)
	title := "Input dataset"
	if kind == domain.DatasetOutput {
		title = "Output dataset"
	}
	return appPage(title, string(kind), p,
		searchForm(q),
		P(Class("muted"), Text(fmt.Sprintf("%d of %d rows", len(rows), len(ds.Rows)))),
		recordTable(ds.Headers, rows),
	)
}

func mappingsPage(p domain.ContextPrincipal, entries []domain.MappingEntry, csrf Node) Node {
	rows := make([]domain.Record, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, domain.Record{"Input header": e.InputHeader, "Output header": e.OutputHeader})
	}
	return appPage("Mappings", "mappings", p,
		recordTable([]string{"Input header", "Output header"}, rows),
		H2(Text("Set mapping")),
		Form(
			Class("edit"),
			Method("post"),
			Action("/ui/mappings"),
			csrf,
			Input(Name("input_header"), Placeholder("Input header"), Required()),
			Input(Name("output_header"), Placeholder("Output header"), Required()),
			Button(Type("submit"), Text("Save")),
		),
	)
}

func lookupsPage(p domain.ContextPrincipal, reg *domain.LookupRegistry) Node {
	rows := make([]domain.Record, 0, reg.Len())
	links := make([]Node, 0, reg.Len())
	for _, o := range reg.Owners() {
		t, _ := reg.Get(o)
		rows = append(rows, domain.Record{"Header": o, "Rows": float64(len(t.Rows))})
		links = append(links, Li(A(Href(lookupHref(o)), Text(o))))
	}
	return appPage("Lookup tables", "lookups", p,
		recordTable([]string{"Header", "Rows"}, rows),
		Ul(Group(links)),
	)
}

func lookupPage(p domain.ContextPrincipal, owner string, t domain.LookupTable, q string) Node {
	rows := filterRecords(t.Headers, t.Rows, q)
	return appPage("Lookup: "+owner, "lookups", p,
		searchForm(q),
		P(Class("muted"), Text("Blank rows and all-blank columns are hidden.")),
		recordTable(t.Headers, rows),
	)
}

func rulesPage(p domain.ContextPrincipal, defaults, user []domain.Rule, csrf Node) Node {
	toRows := func(rules []domain.Rule) []domain.Record {
		out := make([]domain.Record, 0, len(rules))
		for _, r := range rules {
			out = append(out, domain.Record{"Name": r.Name, "Description": r.Description})
		}
		return out
	}
	return appPage("Rules", "rules", p,
		H2(Text("Default")),
		recordTable([]string{"Name", "Description"}, toRows(defaults)),
		H2(Text("User-defined")),
		recordTable([]string{"Name", "Description"}, toRows(user)),
		Form(
			Class("edit"),
			Method("post"),
			Action("/ui/rules"),
			csrf,
			Input(Name("name"), Placeholder("Name"), Required()),
			Input(Name("description"), Placeholder("Description"), Required()),
			Button(Type("submit"), Text("Add rule")),
		),
		If(len(user) > 0, Form(
			Class("edit"),
			Method("post"),
			Action("/ui/rules/delete"),
			csrf,
			Input(Name("name"), Placeholder("Rule name"), Required()),
			Button(Type("submit"), Text("Delete rule")),
		)),
	)
}
