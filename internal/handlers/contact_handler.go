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

// Standalone emergency contact CRUD, for editing a contact outside the
// nested client payload.
type ContactHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewContactHandler(db *gorm.DB, audit *audit.Dispatcher) *ContactHandler {
	return &ContactHandler{db: db, audit: audit}
}

// --------- Requests ---------

type ContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Number       int    `json:"number"`
	Complement   string `json:"complement"`
	Zipcode      string `json:"zipcode"`
	City         string `json:"city"`
	ClientID     uint   `json:"client_id"`
}

func (r ContactRequest) values() validation.Values {
	return validation.Values{
		"name":         r.Name,
		"phone":        r.Phone,
		"neighborhood": r.Neighborhood,
		"street":       r.Street,
		"number":       r.Number,
		"complement":   r.Complement,
		"zipcode":      r.Zipcode,
		"city":         r.City,
		"client_id":    r.ClientID,
	}
}

func contactRules() validation.RuleSet {
	return validation.RuleSet{
		{Name: "name", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 255}}},
		{Name: "neighborhood", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "street", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "number", Required: true, Checks: []validation.Constraint{validation.Min{N: 1}, validation.Max{N: 999999}}},
		{Name: "complement", Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "zipcode", Required: true},
		{Name: "city", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "phone", Checks: []validation.Constraint{validation.MinLen{N: 8}, validation.MaxLen{N: 14}}},
		{Name: "client_id", Required: true, Checks: []validation.Constraint{validation.Exists{Table: "clients"}}},
	}
}

// --------- Handlers ---------

func (h *ContactHandler) List(c *gin.Context) {
	var contacts []models.EmergencyContact
	if err := h.db.Order("id ASC").Find(&contacts).Error; err != nil {
		log.Printf("list contacts: %v", err)
		httperr.Internal(c, "failed_to_list_contacts", "Could not list contacts.")
		return
	}

	httpresp.List(c, contacts)
}

func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid contact id.")
		return
	}

	var contact models.EmergencyContact
	if err := h.db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "contact not found")
			return
		}
		log.Printf("get contact %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_contact", "Could not load contact.")
		return
	}

	httpresp.OK(c, contact)
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if errs := validation.Validate(h.db, contactRules(), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	contact := models.EmergencyContact{
		ClientID:     req.ClientID,
		Name:         req.Name,
		Phone:        req.Phone,
		Neighborhood: req.Neighborhood,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Zipcode:      req.Zipcode,
		City:         req.City,
	}

	if err := h.db.Create(&contact).Error; err != nil {
		log.Printf("create contact: %v", err)
		httperr.Internal(c, "failed_to_create_contact", "Could not create contact.")
		return
	}

	h.dispatch(c, "contact_created", contact.ID)

	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid contact id.")
		return
	}

	var contact models.EmergencyContact
	if err := h.db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "contact not found")
			return
		}
		log.Printf("get contact %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_contact", "Could not load contact.")
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if errs := validation.Validate(h.db, contactRules(), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	contact.ClientID = req.ClientID
	contact.Name = req.Name
	contact.Phone = req.Phone
	contact.Neighborhood = req.Neighborhood
	contact.Street = req.Street
	contact.Number = req.Number
	contact.Complement = req.Complement
	contact.Zipcode = req.Zipcode
	contact.City = req.City

	if err := h.db.Save(&contact).Error; err != nil {
		log.Printf("update contact %d: %v", id, err)
		httperr.Internal(c, "failed_to_update_contact", "Could not update contact.")
		return
	}

	h.dispatch(c, "contact_updated", contact.ID)

	httpresp.OK(c, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid contact id.")
		return
	}

	var contact models.EmergencyContact
	if err := h.db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "contact not found")
			return
		}
		log.Printf("get contact %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_contact", "Could not load contact.")
		return
	}

	if err := h.db.Delete(&contact).Error; err != nil {
		log.Printf("delete contact %d: %v", id, err)
		httperr.Internal(c, "failed_to_delete_contact", "Could not delete contact.")
		return
	}

	h.dispatch(c, "contact_deleted", contact.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
}

func (h *ContactHandler) dispatch(c *gin.Context, action string, entityID uint) {
	principal := middleware.Principal(c)
	h.audit.Dispatch(audit.Event{
		ActorRole: principal.Role,
		ActorID:   &principal.ID,
		Action:    action,
		Entity:    "emergency_contact",
		EntityID:  &entityID,
	})
}
