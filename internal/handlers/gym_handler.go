package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gymtrack/gymtrack-api/internal/audit"
	"github.com/gymtrack/gymtrack-api/internal/config"
	"github.com/gymtrack/gymtrack-api/internal/httperr"
	"github.com/gymtrack/gymtrack-api/internal/httpresp"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/validation"
	"github.com/gymtrack/gymtrack-api/internal/validators"
)

type GymHandler struct {
	db     *gorm.DB
	config *config.Config
	audit  *audit.Dispatcher
}

func NewGymHandler(db *gorm.DB, cfg *config.Config, audit *audit.Dispatcher) *GymHandler {
	return &GymHandler{db: db, config: cfg, audit: audit}
}

// --------- Requests ---------

type GymRequest struct {
	Name         string `json:"name"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Number       int    `json:"number"`
	Complement   string `json:"complement"`
	Zipcode      string `json:"zipcode"`
	City         string `json:"city"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

func (r GymRequest) values() validation.Values {
	return validation.Values{
		"name":         r.Name,
		"neighborhood": r.Neighborhood,
		"street":       r.Street,
		"number":       r.Number,
		"complement":   r.Complement,
		"zipcode":      r.Zipcode,
		"city":         r.City,
		"phone":        r.Phone,
		"email":        strings.ToLower(strings.TrimSpace(r.Email)),
		"password":     r.Password,
	}
}

func gymRules(exceptID uint) validation.RuleSet {
	return validation.RuleSet{
		{Name: "name", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 255}}},
		{Name: "neighborhood", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "street", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "number", Required: true, Checks: []validation.Constraint{validation.Min{N: 1}, validation.Max{N: 999999}}},
		{Name: "complement", Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "zipcode", Required: true},
		{Name: "city", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "phone", Checks: []validation.Constraint{validation.MinLen{N: 8}, validation.MaxLen{N: 14}}},
		{Name: "email", Required: true, Checks: []validation.Constraint{validation.Email{}, validation.Unique{Table: "gyms", Column: "email", ExceptID: exceptID}}},
		{Name: "password", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 8}, validation.MaxLen{N: 30}}},
	}
}

// --------- Handlers ---------

func (h *GymHandler) List(c *gin.Context) {
	var gyms []models.Gym
	if err := h.db.Order("id ASC").Find(&gyms).Error; err != nil {
		log.Printf("list gyms: %v", err)
		httperr.Internal(c, "failed_to_list_gyms", "Could not list gyms.")
		return
	}

	httpresp.List(c, gyms)
}

func (h *GymHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid gym id.")
		return
	}

	var gym models.Gym
	if err := h.db.First(&gym, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "gym not found")
			return
		}
		log.Printf("get gym %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_gym", "Could not load gym.")
		return
	}

	httpresp.OK(c, gym)
}

func (h *GymHandler) Create(c *gin.Context) {
	var req GymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if errs := validation.Validate(h.db, gymRules(0), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if h.config.CheckEmailDomain && !validators.IsEmailDomainValid(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not appear to be valid.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not create gym.")
		return
	}

	gym := models.Gym{
		Name:         req.Name,
		Neighborhood: req.Neighborhood,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Zipcode:      req.Zipcode,
		City:         req.City,
		Phone:        req.Phone,
		Email:        email,
		PasswordHash: string(hashed),
	}

	if err := h.db.Create(&gym).Error; err != nil {
		log.Printf("create gym: %v", err)
		httperr.Internal(c, "failed_to_create_gym", "Could not create gym.")
		return
	}

	h.dispatch(c, "gym_created", gym.ID)

	c.JSON(http.StatusCreated, gym)
}

func (h *GymHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid gym id.")
		return
	}

	var gym models.Gym
	if err := h.db.First(&gym, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "gym not found")
			return
		}
		log.Printf("get gym %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_gym", "Could not load gym.")
		return
	}

	var req GymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if errs := validation.Validate(h.db, gymRules(gym.ID), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not update gym.")
		return
	}

	gym.Name = req.Name
	gym.Neighborhood = req.Neighborhood
	gym.Street = req.Street
	gym.Number = req.Number
	gym.Complement = req.Complement
	gym.Zipcode = req.Zipcode
	gym.City = req.City
	gym.Phone = req.Phone
	gym.Email = strings.ToLower(strings.TrimSpace(req.Email))
	gym.PasswordHash = string(hashed)

	if err := h.db.Save(&gym).Error; err != nil {
		log.Printf("update gym %d: %v", id, err)
		httperr.Internal(c, "failed_to_update_gym", "Could not update gym.")
		return
	}

	h.dispatch(c, "gym_updated", gym.ID)

	httpresp.OK(c, gym)
}

// Delete removes the gym and everything under it: instructors, clients and
// the clients' contacts/conditions, all in one transaction.
func (h *GymHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid gym id.")
		return
	}

	var gym models.Gym
	if err := h.db.First(&gym, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "gym not found")
			return
		}
		log.Printf("get gym %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_gym", "Could not load gym.")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		clientIDs := func() *gorm.DB {
			return tx.Model(&models.Client{}).Select("id").Where("gym_id = ?", gym.ID)
		}

		if err := tx.Where("client_id IN (?)", clientIDs()).Delete(&models.EmergencyContact{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id IN (?)", clientIDs()).Delete(&models.MedicalCondition{}).Error; err != nil {
			return err
		}
		if err := tx.Where("gym_id = ?", gym.ID).Delete(&models.Client{}).Error; err != nil {
			return err
		}
		if err := tx.Where("gym_id = ?", gym.ID).Delete(&models.Instructor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Gym{}, gym.ID).Error
	})
	if err != nil {
		log.Printf("delete gym %d: %v", id, err)
		httperr.Internal(c, "failed_to_delete_gym", "Could not delete gym.")
		return
	}

	h.dispatch(c, "gym_deleted", gym.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Gym deleted"})
}

func (h *GymHandler) dispatch(c *gin.Context, action string, entityID uint) {
	principal := middleware.Principal(c)
	h.audit.Dispatch(audit.Event{
		ActorRole: principal.Role,
		ActorID:   &principal.ID,
		Action:    action,
		Entity:    "gym",
		EntityID:  &entityID,
	})
}
