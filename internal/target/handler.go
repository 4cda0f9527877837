package target

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"dao-governance/pkg/apperror"
	"dao-governance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler serves the invocation surface and the inspection endpoints.
type Handler struct {
	store *Store
	log   zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store *Store, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

type createEventRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Date  string `json:"date" binding:"required,min=1,max=100"`
	Venue string `json:"venue" binding:"max=200"`
}

type joinEventRequest struct {
	EventID     int64  `json:"event_id" binding:"required,gt=0"`
	Participant string `json:"participant" binding:"required,min=1,max=200"`
}

type cancelEventRequest struct {
	EventID int64 `json:"event_id" binding:"required,gt=0"`
}

type insertExamRequest struct {
	Course string `json:"course" binding:"required,min=1,max=100"`
	Group  string `json:"group" binding:"required,min=1,max=100"`
	OutOf  int64  `json:"out_of" binding:"required,gt=0"`
	Curve  int64  `json:"curve" binding:"gte=0"`
}

type insertParticipationRequest struct {
	Group   string `json:"group" binding:"required,min=1,max=100"`
	Percent int64  `json:"percent" binding:"gte=0,lte=100"`
}

type createPollRequest struct {
	Description string `json:"description" binding:"required,min=1,max=500"`
	Owner       string `json:"owner" binding:"required,min=1,max=200"`
}

type votePollRequest struct {
	PollID int64  `json:"poll_id" binding:"required,gt=0"`
	Choice string `json:"choice" binding:"required,oneof=approve reject pass"`
	Voter  string `json:"voter" binding:"required,min=1,max=200"`
}

type endPollRequest struct {
	PollID int64  `json:"poll_id" binding:"required,gt=0"`
	Owner  string `json:"owner" binding:"required,min=1,max=200"`
}

type mintNFTRequest struct {
	Owner    string `json:"owner" binding:"required,min=1,max=200"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Content  []byte `json:"content" binding:"required"`
	Metadata string `json:"metadata" binding:"max=2000"`
}

// Invoke handles POST /invoke/:method. The body carries the opaque message
// bytes of an accepted proposal, JSON-encoded for every method here.
func (h *Handler) Invoke(c *gin.Context) {
	method := c.Param("method")
	switch method {
	case "create_event":
		h.createEvent(c)
	case "join_event":
		h.joinEvent(c)
	case "cancel_event":
		h.cancelEvent(c)
	case "insert_exam":
		h.insertExam(c)
	case "insert_participation":
		h.insertParticipation(c)
	case "create_poll":
		h.createPoll(c)
	case "vote_poll":
		h.votePoll(c)
	case "end_poll":
		h.endPoll(c)
	case "mint_nft":
		h.mintNFT(c)
	default:
		response.Error(c, apperror.New("TGT_001", fmt.Sprintf("unknown method %q", method), http.StatusNotFound))
	}
}

func (h *Handler) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	id, err := h.store.CreateEvent(c.Request.Context(), req.Name, req.Date, req.Venue)
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	h.log.Info().Int64("event_id", id).Str("name", req.Name).Msg("event created")
	response.Created(c, gin.H{"event_id": id})
}

func (h *Handler) joinEvent(c *gin.Context) {
	var req joinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	if err := h.store.JoinEvent(c.Request.Context(), req.EventID, req.Participant); err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	response.OK(c, gin.H{"event_id": req.EventID, "participant": req.Participant})
}

func (h *Handler) cancelEvent(c *gin.Context) {
	var req cancelEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	if err := h.store.CancelEvent(c.Request.Context(), req.EventID); err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	h.log.Info().Int64("event_id", req.EventID).Msg("event cancelled")
	response.OK(c, gin.H{"event_id": req.EventID, "cancelled": true})
}

func (h *Handler) insertExam(c *gin.Context) {
	var req insertExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	exam := Exam{Course: req.Course, Group: req.Group, OutOf: req.OutOf, Curve: req.Curve}
	if err := h.store.InsertExam(c.Request.Context(), exam); err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	response.OK(c, exam)
}

func (h *Handler) insertParticipation(c *gin.Context) {
	var req insertParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	if err := h.store.InsertParticipation(c.Request.Context(), req.Group, req.Percent); err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	response.OK(c, gin.H{"group": req.Group, "percent": req.Percent})
}

func (h *Handler) createPoll(c *gin.Context) {
	var req createPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	id, err := h.store.CreatePoll(c.Request.Context(), req.Description, req.Owner)
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	h.log.Info().Int64("poll_id", id).Str("owner", req.Owner).Msg("poll created")
	response.Created(c, gin.H{"poll_id": id})
}

func (h *Handler) votePoll(c *gin.Context) {
	var req votePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	poll, err := h.store.VotePoll(c.Request.Context(), req.PollID, req.Voter, req.Choice)
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	response.OK(c, poll)
}

func (h *Handler) endPoll(c *gin.Context) {
	var req endPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	if err := h.store.EndPoll(c.Request.Context(), req.PollID, req.Owner); err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	h.log.Info().Int64("poll_id", req.PollID).Msg("poll ended")
	response.OK(c, gin.H{"poll_id": req.PollID, "active": false})
}

func (h *Handler) mintNFT(c *gin.Context) {
	var req mintNFTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errBadMessage(err))
		return
	}

	id, err := h.store.MintNFT(c.Request.Context(), req.Owner, req.Name, req.Content, req.Metadata)
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	h.log.Info().Int64("nft_id", id).Str("owner", req.Owner).Msg("nft minted")
	response.Created(c, gin.H{"nft_id": id})
}

// ListEvents handles GET /events.
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.store.ListEvents(c.Request.Context())
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}
	response.OK(c, events)
}

// GetEvent handles GET /events/:id.
func (h *Handler) GetEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, errBadMessage(fmt.Errorf("event id must be a positive integer")))
		return
	}

	event, err := h.store.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}
	response.OK(c, event)
}

// GetPoll handles GET /polls/:id.
func (h *Handler) GetPoll(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, errBadMessage(fmt.Errorf("poll id must be a positive integer")))
		return
	}

	poll, err := h.store.GetPoll(c.Request.Context(), id)
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}
	response.OK(c, poll)
}

// GetExam handles GET /exams/:course/:group. The participation percentage
// rides along when the group has one.
func (h *Handler) GetExam(c *gin.Context) {
	exam, err := h.store.GetExam(c.Request.Context(), c.Param("course"), c.Param("group"))
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}

	view := struct {
		Exam
		Participation *int64 `json:"participation,omitempty"`
	}{Exam: exam}

	if percent, err := h.store.GetParticipation(c.Request.Context(), exam.Group); err == nil {
		view.Participation = &percent
	} else if !errors.Is(err, ErrNotFound) {
		response.Error(c, mapStoreErr(err))
		return
	}

	response.OK(c, view)
}

// ListNFTs handles GET /nfts.
func (h *Handler) ListNFTs(c *gin.Context) {
	nfts, err := h.store.ListNFTs(c.Request.Context())
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}
	response.OK(c, nfts)
}

// GetNFT handles GET /nfts/:id.
func (h *Handler) GetNFT(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, errBadMessage(fmt.Errorf("nft id must be a positive integer")))
		return
	}

	nft, err := h.store.GetNFT(c.Request.Context(), id)
	if err != nil {
		response.Error(c, mapStoreErr(err))
		return
	}
	response.OK(c, nft)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errBadMessage(err error) *apperror.AppError {
	return apperror.New("TGT_002", fmt.Sprintf("malformed message: %v", err), http.StatusBadRequest)
}

func mapStoreErr(err error) *apperror.AppError {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperror.New("TGT_003", "record not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyExists):
		return apperror.New("TGT_004", "record already exists", http.StatusConflict)
	case errors.Is(err, ErrAlreadyVoted):
		return apperror.New("TGT_005", "voter has already voted on this poll", http.StatusConflict)
	case errors.Is(err, ErrEventClosed):
		return apperror.New("TGT_006", "event has been cancelled", http.StatusUnprocessableEntity)
	case errors.Is(err, ErrPollClosed):
		return apperror.New("TGT_006", "poll is no longer active", http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotOwner):
		return apperror.New("TGT_007", "caller does not own this record", http.StatusForbidden)
	default:
		return apperror.InternalError(err)
	}
}
