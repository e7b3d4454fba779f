package quote

import (
	"github.com/xackery/replyquote/model"
)

// Rewrite returns a copy of req carrying content instead of its original body, with the reply
// reference removed. req, its payload and its options are left untouched.
func Rewrite(req *model.SendRequest, content string) *model.SendRequest {
	out := req.Clone()
	if out.Content.Payload != nil {
		out.Content.Payload.Content = content
	} else {
		out.Content.Text = content
	}
	if out.Options != nil {
		out.Options.MessageReference = nil
	}
	return out
}
