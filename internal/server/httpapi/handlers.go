package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/server/models"
)

type userResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Token:     u.Token,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

type messageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Subject:   m.Subject,
		Body:      m.Body,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

type attachmentResponse struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	FileName  string    `json:"file_name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func toAttachmentResponse(a *models.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:        a.ID,
		MessageID: a.MessageID,
		FileName:  a.FileName,
		Size:      a.Size,
		CreatedAt: a.CreatedAt,
	}
}

// serviceError maps common service failures onto HTTP statuses. Handlers with
// route-specific codes handle those before falling through to this.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorInvalidEmail), errors.Is(err, common.ErrorInvalidInput):
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "invalid input")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, CodeUserExists, "user already exists")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "malformed request body")
		return false
	}
	return true
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "pong")
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, "no such endpoint")
}

type registerRequest struct {
	Email string `json:"email"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Email)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email string `json:"email"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.users.Login(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, CodeUserNotFound, "user not found")
			return
		}
		s.serviceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	msgs, err := s.messages.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	result := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, toMessageResponse(m))
	}

	writeData(w, http.StatusOK, result)
}

type sendMessageRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req sendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := s.messages.Send(r.Context(), user, req.Recipient, req.Subject, req.Body)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toMessageResponse(msg))
}

func (s *Server) getMessage(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	msg, err := s.messages.Get(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toMessageResponse(msg))
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.messages.Delete(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

type addAttachmentRequest struct {
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}

type addAttachmentResponse struct {
	Attachment attachmentResponse `json:"attachment"`
	UploadURL  string             `json:"upload_url"`
}

func (s *Server) addAttachment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req addAttachmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FileName == "" || req.Size < 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "invalid input")
		return
	}

	att, uploadURL, err := s.attachments.Add(r.Context(), user.ID, mux.Vars(r)["id"], req.FileName, req.Size)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, addAttachmentResponse{
		Attachment: toAttachmentResponse(att),
		UploadURL:  uploadURL,
	})
}

func (s *Server) listAttachments(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	atts, err := s.attachments.ListForMessage(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	result := make([]attachmentResponse, 0, len(atts))
	for _, a := range atts {
		result = append(result, toAttachmentResponse(a))
	}

	writeData(w, http.StatusOK, result)
}

type downloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func (s *Server) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	url, err := s.attachments.DownloadURL(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, downloadResponse{URL: url, ExpiresIn: int((15 * time.Minute).Seconds())})
}
