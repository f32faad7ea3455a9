package main

import (
	"math/rand/v2"
	"regexp"
)

var examples = map[string]string{
	"Translate a column":          `sheetprompt query set 1 "Translate {{title}} to French" && sheetprompt run --sheet books.csv`,
	"Classify support tickets":    `cat tickets.csv | sheetprompt run --title triage > labels.tsv`,
	"Preview the prompts":         `sheetprompt run --dry-run`,
	"Switch to another model":     `sheetprompt api model gpt-4`,
	"Find the result of last run": `sheetprompt runs show --copy`,
}

func randomExample() (string, string) {
	keys := make([]string, 0, len(examples))
	for k := range examples {
		keys = append(keys, k)
	}
	desc := keys[rand.IntN(len(keys))] //nolint:gosec
	return desc, examples[desc]
}

var (
	quotedReg = regexp.MustCompile(`"[^"]*"`)
	pipeReg   = regexp.MustCompile(`[|>]|&&`)
)

// cheapHighlighting colors quoted strings and pipes in an example command.
func cheapHighlighting(s styles, code string) string {
	code = quotedReg.ReplaceAllStringFunc(code, func(x string) string {
		return s.Quote.Render(x)
	})
	code = pipeReg.ReplaceAllStringFunc(code, func(x string) string {
		return s.Pipe.Render(x)
	})
	return code
}
