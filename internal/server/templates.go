package server

import (
	"embed"
	"html/template"

	"modeldash/internal/core"
	"modeldash/internal/util"
)

const (
	indexTemplate     = "index.html"
	modelInfoTemplate = "model_info.html"
)

//go:embed templates/*.html
var templateFS embed.FS

type modelPageData struct {
	ModelID    string
	FineTuneID string
	Info       core.DetailPayload
	// Failed marks Info as an {"error": ...} payload built from a failed lookup.
	Failed bool
}

var templateFuncs = template.FuncMap{
	"prettyJSON": func(v any) string {
		out, err := util.MarshalIndentJSON(v)
		if err != nil {
			return err.Error()
		}
		return out
	},
	"errorMessage": func(p core.DetailPayload) string {
		msg, _ := p[core.ErrorPayloadKey].(string)
		return msg
	},
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
