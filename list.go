package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/sheetprompt/internal/state"
)

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func printQueries(w io.Writer, app *state.App, tty bool) {
	for i, q := range app.Queries {
		text := oneLine(q.Text)
		if !tty {
			mark := "off"
			if q.Enabled {
				mark = "on"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, mark, text)
			continue
		}

		mark, style := "○", stdoutStyles().Disabled
		if q.Enabled {
			mark, style = "●", stdoutStyles().Enabled
		}
		if text == "" {
			text = stdoutStyles().Comment.Render("(empty)")
		} else {
			text = style.Render(text)
		}
		fmt.Fprintf(
			w, "%s %s %s\n",
			stdoutStyles().Comment.Render(fmt.Sprintf("%2d.", i+1)),
			style.Render(mark),
			text,
		)
	}
}

func printAPIs(w io.Writer, app *state.App, tty bool) {
	for i, api := range app.APIs {
		selected := i == app.APIIndex
		if !tty {
			mark := " "
			if selected {
				mark = "*"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, mark, api.Name, api.URL, api.SelectedModel)
			continue
		}

		mark := " "
		name := api.Name
		if selected {
			mark = stdoutStyles().Enabled.Render("*")
			name = stdoutStyles().AppName.Render(name)
		}
		fmt.Fprintf(
			w, "%s %s %s %s %s\n",
			mark,
			stdoutStyles().Comment.Render(fmt.Sprintf("%d.", i+1)),
			name,
			stdoutStyles().Link.Render(api.URL),
			stdoutStyles().Comment.Render("("+api.SelectedModel+")"),
		)
	}
}

func printModels(w io.Writer, app *state.App, tty bool) {
	api := app.API()
	for _, model := range api.Models {
		selected := model == api.SelectedModel
		switch {
		case !tty && selected:
			fmt.Fprintln(w, "*\t"+model)
		case !tty:
			fmt.Fprintln(w, " \t"+model)
		case selected:
			fmt.Fprintln(w, stdoutStyles().Enabled.Render("* "+model))
		default:
			fmt.Fprintln(w, "  "+model)
		}
	}
}
