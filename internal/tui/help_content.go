package tui

// PageHelp is rendered with glamour in the help overlay.
const PageHelp = `
# App Generator

Pick a template, describe what you want to build, and generate.

## Keys

| Key | Action |
|-----|--------|
| tab / shift+tab | Move focus: templates, prompt, output |
| up / down | Move through templates (or scroll code) |
| enter | Select template / submit prompt |
| / | Filter templates |
| alt+enter | New line in the prompt |
| ctrl+g | Generate |
| ctrl+p | Toggle code / preview |
| left / right | Switch file tab (output focused) |
| ctrl+e | Export generated files |
| ctrl+t | Toggle light / dark theme |
| ? | Toggle this help |
| ctrl+c | Quit |

## Notes

Generation is simulated: after a short delay two files are produced,
` + "`index.js`" + ` and ` + "`package.json`" + `. Editing the prompt while a
generation is running changes what it produces unless ` + "`bind_prompt_at`" + `
is set to ` + "`submit`" + ` in ` + "`~/.appgen.yaml`" + `.
`
