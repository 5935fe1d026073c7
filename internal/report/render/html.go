package render

import (
	"html/template"
	"io"

	"streamreport/internal/report"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Titles.Summary}} - {{.SessionID}}</title></head>
<body>
<header class="report-meta">{{if .GeneratedAt}}
<div class="generated-at">{{.Titles.GeneratedAt}}: {{.GeneratedAt}}</div>{{end}}{{if .VideoDuration}}
<div class="video-duration">{{.Titles.VideoDuration}}: {{.VideoDuration}}</div>{{end}}{{if .CommentTotal}}
<div class="comment-total">{{.Titles.CommentTotal}}: {{.CommentTotal}}</div>{{end}}
</header>
<section id="summary"><h2>{{.Titles.Summary}}</h2>
<div class="stats-grid">{{range .Summary}}
<div class="stat-card"><h4>{{.Icon}} {{.Label}}</h4><div class="stat-value">{{.Display}}</div></div>{{end}}
</div></section>
<section id="charts"><h2>{{.Titles.Charts}}</h2>{{range .Charts}}
<figure class="chart chart-{{.Kind}}">{{if .Present}}<img src="{{.Path}}" alt="{{.Title}}">{{end}}<figcaption>{{.Title}}</figcaption></figure>{{end}}
</section>
<section id="peaks"><h2>{{.Titles.Peaks}}</h2>{{if .Peaks.Empty}}
<p>{{.Peaks.Fallback}}</p>{{end}}{{range .Peaks.Metrics}}
<div class="metric-section" style="border-color: {{.Color}}"><h4>{{.Title}}</h4>{{range .Events}}
<div class="peak-item">{{.Text}}</div>{{end}}
</div>{{end}}
</section>
<section id="comments"><h2>{{.Titles.Comments}}</h2>{{range .Comments}}
<div class="category-item"><h5>{{.Name}}</h5><div class="count">{{.CountText}}</div>{{if .Examples}}
<div class="category-examples"><strong>{{.ExamplesLabel}}</strong>{{range .Examples}}<br>• {{.}}{{end}}</div>{{end}}
</div>{{end}}
</section>
<section id="recommendations"><h2>{{.Titles.Recommendations}}</h2>
<h3>{{.Titles.GoodPoints}}</h3><ol id="goodPointsList">{{range .Recommendations.GoodPoints}}<li>{{.Text}}</li>{{end}}</ol>
<h3>{{.Titles.Improvements}}</h3><ol id="improvementsList">{{range .Recommendations.Improvements}}<li>{{.Text}}</li>{{end}}</ol>
<h3>{{.Titles.NextActions}}</h3><ol id="nextActionsList">{{range .Recommendations.NextActions}}<li>{{.Text}}</li>{{end}}</ol>
</section>
</body>
</html>
`))

// HTML writes the view as a standalone HTML page. Chart images reference the
// session-scoped asset paths.
func HTML(w io.Writer, v report.View) error {
	return htmlTemplate.Execute(w, v)
}
