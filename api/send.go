package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xackery/replyquote/interceptor"
	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/switchboard"
)

type sendBody struct {
	Content          string                  `json:"content"`
	Payload          *model.Payload          `json:"payload"`
	MessageReference *model.MessageReference `json:"message_reference"`
	Silent           bool                    `json:"silent"`
}

type sendResponse struct {
	Message   string `json:"message"`
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

func (t *API) sendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := model.NewLogger(ctx)
	channelID := mux.Vars(r)["channel_id"]

	body := &sendBody{}
	err := json.NewDecoder(r.Body).Decode(body)
	if err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, &errorResponse{Message: "invalid body: " + err.Error()})
		return
	}
	if body.Content == "" && body.Payload == nil {
		writeJSON(ctx, w, http.StatusBadRequest, &errorResponse{Message: "content or payload required"})
		return
	}
	if body.MessageReference != nil && body.MessageReference.MessageID == "" {
		writeJSON(ctx, w, http.StatusBadRequest, &errorResponse{Message: "message_reference.message_id required"})
		return
	}

	req := &model.SendRequest{
		ChannelID: channelID,
		Content: model.Content{
			Text:    body.Content,
			Payload: body.Payload,
		},
	}
	if body.MessageReference != nil || body.Silent {
		req.Options = &model.SendOptions{
			MessageReference: body.MessageReference,
			Silent:           body.Silent,
		}
	}

	msg, err := t.board.Send(ctx, switchboard.SendOperation, req)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case model.IsTargetNotFound(err):
			status = http.StatusConflict
		case interceptor.IsUnknownMessage(err):
			status = http.StatusNotFound
		}
		log.Warn().Err(err).Int("status", status).Str("channel_id", channelID).Msg("[api->discord] send")
		writeJSON(ctx, w, status, &errorResponse{Message: err.Error()})
		return
	}

	log.Debug().Str("channel_id", channelID).Str("message_id", msg.ID).Msg("[api->discord] sent")
	writeJSON(ctx, w, http.StatusOK, &sendResponse{
		Message:   "sent",
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		Content:   msg.Content,
	})
}
