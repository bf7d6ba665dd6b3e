package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/citysafe/safewatch/internal/assistant"
	"github.com/citysafe/safewatch/internal/auth"
	"github.com/citysafe/safewatch/internal/dates"
	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
	"github.com/citysafe/safewatch/internal/storage"
)

// Handler handles HTTP requests for the safewatch API.
type Handler struct {
	pipeline   *Pipeline
	incidents  storage.IncidentStore
	users      storage.UserStore
	contacts   storage.ContactStore
	chat       *assistant.ChatService
	parser     *assistant.QueryParser
	predictor  *assistant.Predictor
	jwt        *auth.Manager
	bcryptCost int
	logger     logging.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	pipeline *Pipeline,
	incidents storage.IncidentStore,
	users storage.UserStore,
	contacts storage.ContactStore,
	chat *assistant.ChatService,
	parser *assistant.QueryParser,
	predictor *assistant.Predictor,
	jwt *auth.Manager,
	bcryptCost int,
	log logging.Logger,
) *Handler {
	return &Handler{
		pipeline:   pipeline,
		incidents:  incidents,
		users:      users,
		contacts:   contacts,
		chat:       chat,
		parser:     parser,
		predictor:  predictor,
		jwt:        jwt,
		bcryptCost: bcryptCost,
		logger:     log,
	}
}

// GetIncidents returns one category's records, optionally filtered by
// location and date range.
//
// GET /api/v1/incidents/:category?location=&startDate=&endDate=&from=&size=
func (h *Handler) GetIncidents(c *gin.Context) {
	cat := domain.Category(c.Param("category"))
	if !cat.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown incident category"})
		return
	}

	var pagination struct {
		From int `form:"from"`
		Size int `form:"size"`
	}
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}

	q := storage.IncidentQuery{
		Location: c.Query("location"),
		Range:    dates.ParseRange(c.Query("startDate"), c.Query("endDate")),
		From:     pagination.From,
		Size:     pagination.Size,
	}

	records, err := h.incidents.FetchCategory(c.Request.Context(), cat, q)
	if err != nil {
		h.logger.Error("Incident fetch failed",
			logging.String("category", string(cat)),
			logging.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch incidents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": cat,
		"count":    len(records),
		"records":  records,
	})
}

// GetSafetyAnalysis returns the risk profiles for every area, highest risk
// first.
//
// GET /api/v1/analysis/safety
func (h *Handler) GetSafetyAnalysis(c *gin.Context) {
	profiles, err := h.pipeline.Profiles(c.Request.Context())
	if err != nil {
		h.logger.Error("Safety analysis failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run safety analysis"})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// Predict generates an incident likelihood prediction.
//
// POST /api/v1/predict
func (h *Handler) Predict(c *gin.Context) {
	var req assistant.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Date == "" || req.Location == "" || req.IncidentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date, location, and incident type are required"})
		return
	}
	if !req.IncidentType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown incident category"})
		return
	}

	result, err := h.predictor.Predict(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, assistant.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format"})
			return
		}
		h.logger.Error("Prediction failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate prediction"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Chat answers a safety question through the assistant.
//
// POST /api/v1/chat
func (h *Handler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	result, err := h.chat.Chat(c.Request.Context(), req.Message)
	if err != nil {
		h.logger.Error("Chat failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error generating response"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ParseQuery extracts prediction parameters from a natural language query.
//
// POST /api/v1/chat/parse-query
func (h *Handler) ParseQuery(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	result, err := h.parser.Parse(c.Request.Context(), req.Query)
	if err != nil {
		h.logger.Error("Query parse failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse query"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListContacts returns all active emergency contacts.
//
// GET /api/v1/emergency/contacts
func (h *Handler) ListContacts(c *gin.Context) {
	contacts, err := h.contacts.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("Contact list failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching emergency contacts"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// CreateContactRequest is the payload for adding an emergency contact.
type CreateContactRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Description string `json:"description"`
}

// CreateContact adds an emergency contact.
//
// POST /api/v1/emergency/contacts
func (h *Handler) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	contact := &domain.EmergencyContact{
		ID:          uuid.New(),
		Name:        req.Name,
		Category:    req.Category,
		Phone:       req.Phone,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.contacts.Create(c.Request.Context(), contact); err != nil {
		h.logger.Error("Contact create failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error creating contact"})
		return
	}
	c.JSON(http.StatusCreated, contact)
}
