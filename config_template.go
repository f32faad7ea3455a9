package main

const configTemplate = `# {{ index .Help "data-path" }}
# data-path: ~/.local/share/sheetprompt
# {{ index .Help "log-level" }}
log-level: {{ .Config.LogLevel }}
# {{ index .Help "quiet" }}
quiet: false
# {{ index .Help "raw" }}
raw: false
# {{ index .Help "no-history" }}
no-history: false
# {{ index .Help "timeout" }}
timeout: 0s
# {{ index .Help "max-retries" }}
max-retries: 0
# {{ index .Help "http-proxy" }}
# http-proxy: http://localhost:3128
# {{ index .Help "max-tokens" }}
max-tokens: {{ .Config.MaxTokens }}
# {{ index .Help "temp" }}
temp: {{ .Config.Temperature }}
# {{ index .Help "topp" }}
topp: {{ .Config.TopP }}
# {{ index .Help "presence-penalty" }}
presence-penalty: {{ .Config.PresencePenalty }}
`
