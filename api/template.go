package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/quote"
)

func (t *API) preview(w http.ResponseWriter, r *http.Request) {
	type Req struct {
		// Template overrides the active template when set
		Template string               `json:"template"`
		Record   *model.MessageRecord `json:"record"`
		Reply    string               `json:"reply"`
	}
	type Resp struct {
		Template string `json:"template"`
		Content  string `json:"content"`
	}
	ctx := r.Context()

	req := &Req{}
	err := json.NewDecoder(r.Body).Decode(req)
	if err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, &errorResponse{Message: "invalid body: " + err.Error()})
		return
	}
	tmpl := req.Template
	if tmpl == "" {
		tmpl = t.template()
	}
	writeJSON(ctx, w, http.StatusOK, &Resp{
		Template: tmpl,
		Content:  t.renderer.Render(tmpl, req.Record, req.Reply),
	})
}

func (t *API) variables(w http.ResponseWriter, r *http.Request) {
	type Resp struct {
		Variables       []string `json:"variables"`
		DefaultTemplate string   `json:"default_template"`
	}
	writeJSON(r.Context(), w, http.StatusOK, &Resp{
		Variables:       strings.Fields(quote.Variables),
		DefaultTemplate: quote.DefaultTemplate,
	})
}
