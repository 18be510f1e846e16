package ui

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func loginPage(errMsg string) Node {
	return HTML(
		Lang("en"),
		head("Sign in"),
		Body(
			Main(
				Class("main login"),
				H1(Text("sheetmap")),
				If(errMsg != "", P(Class("error"), Text("Error: "+errMsg))),
				P(Text("Paste a JWT bearer token to browse and edit mappings.")),
				Form(
					Method("post"),
					Action("/ui/login"),
					Textarea(Name("token"), Placeholder("Paste token here"), Required()),
					Button(Type("submit"), Text("Sign in")),
				),
			),
		),
	)
}
