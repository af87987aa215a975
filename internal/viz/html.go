package viz

import (
	"fmt"
	"html/template"
	"os"
	"strings"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; background: #fafafa; }
.chart { background: #fff; border: 1px solid #ddd; margin-bottom: 2rem; padding: 1rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Charts}}<div class="chart">{{.}}</div>
{{end}}</body>
</html>
`))

type page struct {
	Title  string
	Charts []template.HTML
}

// WritePage writes a standalone HTML report embedding the given SVG charts.
func WritePage(path, title string, svgs []string) error {
	charts := make([]template.HTML, len(svgs))
	for i, s := range svgs {
		if !strings.HasPrefix(s, "<svg") {
			return fmt.Errorf("chart %d is not an SVG document", i)
		}
		charts[i] = template.HTML(s)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pageTemplate.Execute(f, page{Title: title, Charts: charts})
}
