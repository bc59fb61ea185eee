package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gymtrack/gymtrack-api/internal/audit"
	"github.com/gymtrack/gymtrack-api/internal/httperr"
	"github.com/gymtrack/gymtrack-api/internal/httpresp"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/validation"
)

type ConditionHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewConditionHandler(db *gorm.DB, audit *audit.Dispatcher) *ConditionHandler {
	return &ConditionHandler{db: db, audit: audit}
}

// --------- Requests ---------

type ConditionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Medicine    string `json:"medicine"`
	ClientID    uint   `json:"client_id"`
}

func (r ConditionRequest) values() validation.Values {
	return validation.Values{
		"name":        r.Name,
		"description": r.Description,
		"medicine":    r.Medicine,
		"client_id":   r.ClientID,
	}
}

func conditionRules() validation.RuleSet {
	return validation.RuleSet{
		{Name: "name", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 255}}},
		{Name: "description", Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 400}}},
		{Name: "medicine", Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 255}}},
		{Name: "client_id", Required: true, Checks: []validation.Constraint{validation.Exists{Table: "clients"}}},
	}
}

// --------- Handlers ---------

func (h *ConditionHandler) List(c *gin.Context) {
	var conditions []models.MedicalCondition
	if err := h.db.Order("id ASC").Find(&conditions).Error; err != nil {
		log.Printf("list conditions: %v", err)
		httperr.Internal(c, "failed_to_list_conditions", "Could not list conditions.")
		return
	}

	httpresp.List(c, conditions)
}

func (h *ConditionHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid condition id.")
		return
	}

	var condition models.MedicalCondition
	if err := h.db.First(&condition, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "condition not found")
			return
		}
		log.Printf("get condition %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_condition", "Could not load condition.")
		return
	}

	httpresp.OK(c, condition)
}

func (h *ConditionHandler) Create(c *gin.Context) {
	var req ConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if errs := validation.Validate(h.db, conditionRules(), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	condition := models.MedicalCondition{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		Medicine:    req.Medicine,
	}

	if err := h.db.Create(&condition).Error; err != nil {
		log.Printf("create condition: %v", err)
		httperr.Internal(c, "failed_to_create_condition", "Could not create condition.")
		return
	}

	h.dispatch(c, "condition_created", condition.ID)

	c.JSON(http.StatusCreated, condition)
}

func (h *ConditionHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid condition id.")
		return
	}

	var condition models.MedicalCondition
	if err := h.db.First(&condition, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "condition not found")
			return
		}
		log.Printf("get condition %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_condition", "Could not load condition.")
		return
	}

	var req ConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if errs := validation.Validate(h.db, conditionRules(), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	condition.ClientID = req.ClientID
	condition.Name = req.Name
	condition.Description = req.Description
	condition.Medicine = req.Medicine

	if err := h.db.Save(&condition).Error; err != nil {
		log.Printf("update condition %d: %v", id, err)
		httperr.Internal(c, "failed_to_update_condition", "Could not update condition.")
		return
	}

	h.dispatch(c, "condition_updated", condition.ID)

	httpresp.OK(c, condition)
}

func (h *ConditionHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid condition id.")
		return
	}

	var condition models.MedicalCondition
	if err := h.db.First(&condition, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "condition not found")
			return
		}
		log.Printf("get condition %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_condition", "Could not load condition.")
		return
	}

	if err := h.db.Delete(&condition).Error; err != nil {
		log.Printf("delete condition %d: %v", id, err)
		httperr.Internal(c, "failed_to_delete_condition", "Could not delete condition.")
		return
	}

	h.dispatch(c, "condition_deleted", condition.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Condition deleted"})
}

func (h *ConditionHandler) dispatch(c *gin.Context, action string, entityID uint) {
	principal := middleware.Principal(c)
	h.audit.Dispatch(audit.Event{
		ActorRole: principal.Role,
		ActorID:   &principal.ID,
		Action:    action,
		Entity:    "medical_condition",
		EntityID:  &entityID,
	})
}
