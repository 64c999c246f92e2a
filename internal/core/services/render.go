package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

func renderMarkdown(r *domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", r.Title, r.Summary)

	if len(r.Videos) > 0 {
		b.WriteString("**Sources:**\n\n")
		for i := range r.Videos {
			v := &r.Videos[i]
			fmt.Fprintf(&b, "- [%s](%s) (%s)\n", v.Title, v.URL(), v.Channel)
		}
		b.WriteString("\n")
	}

	for _, section := range r.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", section.Heading, section.Content)
		for _, f := range section.Frames {
			if f.Path == "" {
				continue
			}
			fmt.Fprintf(&b, "![%s](%s)\n*%s [%s]*\n\n", f.Reason, f.Path, f.Reason, domain.FormatTimestamp(f.Timestamp))
		}
	}

	if len(r.KeyTakeaways) > 0 {
		b.WriteString("## Key Takeaways\n\n")
		for _, t := range r.KeyTakeaways {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"ts": domain.FormatTimestamp,
	"img": func(data []byte) template.URL {
		return template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data))
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
    body { font-family: system-ui, sans-serif; max-width: 900px; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #1a1a1a; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    h2 { color: #2c5282; margin-top: 2rem; }
    figure { margin: 1.5rem 0; text-align: center; }
    img { max-width: 100%; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.15); }
    figcaption { font-size: 0.9rem; color: #666; margin-top: 0.5rem; font-style: italic; }
    .summary { font-size: 1.1rem; color: #444; border-left: 4px solid #2c5282; padding-left: 1rem; margin: 1.5rem 0; }
    .sources { font-size: 0.9rem; color: #555; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="summary">{{.Summary}}</div>
{{- if .Videos}}
<ul class="sources">{{range .Videos}}<li><a href="{{.URL}}">{{.Title}}</a> ({{.Channel}})</li>{{end}}</ul>
{{- end}}
{{- range .Sections}}
<section><h2>{{.Heading}}</h2><p>{{.Content}}</p>
{{- range .Frames}}{{if .Image}}
<figure><img src="{{img .Image}}" alt="{{.Reason}}"><figcaption>{{.Reason}} [{{ts .Timestamp}}]</figcaption></figure>
{{- end}}{{end}}
</section>
{{- end}}
{{- if .KeyTakeaways}}
<section><h2>Key Takeaways</h2><ul>{{range .KeyTakeaways}}<li>{{.}}</li>{{end}}</ul></section>
{{- end}}
</body>
</html>
`))

func renderHTML(r *domain.Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}
