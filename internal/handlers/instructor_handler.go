package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gymtrack/gymtrack-api/internal/audit"
	"github.com/gymtrack/gymtrack-api/internal/httperr"
	"github.com/gymtrack/gymtrack-api/internal/httpresp"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/validation"
)

type InstructorHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewInstructorHandler(db *gorm.DB, audit *audit.Dispatcher) *InstructorHandler {
	return &InstructorHandler{db: db, audit: audit}
}

// --------- Requests ---------

type InstructorRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Arrive   string `json:"arrive"`
	Leave    string `json:"leave"`
	GymID    uint   `json:"gym_id"`
}

func (r InstructorRequest) values() validation.Values {
	return validation.Values{
		"name":     r.Name,
		"email":    strings.ToLower(strings.TrimSpace(r.Email)),
		"phone":    r.Phone,
		"password": r.Password,
		"arrive":   r.Arrive,
		"leave":    r.Leave,
		"gym_id":   r.GymID,
	}
}

// Shifts are same-day only: arrive must come strictly before leave, there
// is no overnight wraparound.
func instructorRules(exceptID uint) validation.RuleSet {
	return validation.RuleSet{
		{Name: "name", Required: true, Checks: []validation.Constraint{validation.MaxLen{N: 255}}},
		{Name: "email", Required: true, Checks: []validation.Constraint{validation.Email{}, validation.Unique{Table: "instructors", Column: "email", ExceptID: exceptID}}},
		{Name: "phone", Checks: []validation.Constraint{validation.Numeric{}}},
		{Name: "password", Required: true, Checks: []validation.Constraint{validation.MaxLen{N: 255}}},
		{Name: "arrive", Required: true, Checks: []validation.Constraint{validation.TimeOfDay{}, validation.BeforeField{Other: "leave"}}},
		{Name: "leave", Required: true, Checks: []validation.Constraint{validation.TimeOfDay{}, validation.AfterField{Other: "arrive"}}},
		{Name: "gym_id", Required: true, Checks: []validation.Constraint{validation.Exists{Table: "gyms"}}},
	}
}

// --------- Handlers ---------

func (h *InstructorHandler) List(c *gin.Context) {
	var instructors []models.Instructor
	if err := h.db.Order("id ASC").Find(&instructors).Error; err != nil {
		log.Printf("list instructors: %v", err)
		httperr.Internal(c, "failed_to_list_instructors", "Could not list instructors.")
		return
	}

	httpresp.List(c, instructors)
}

// ListByGym returns the gym's instructors in fixed pages of ten.
func (h *InstructorHandler) ListByGym(c *gin.Context) {
	gymID, err := strconv.ParseUint(c.Param("gym_id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid gym id.")
		return
	}

	page := pageParam(c)

	q := h.db.Model(&models.Instructor{}).Where("gym_id = ?", gymID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Printf("count instructors for gym %d: %v", gymID, err)
		httperr.Internal(c, "failed_to_list_instructors", "Could not list instructors.")
		return
	}

	var instructors []models.Instructor
	if err := q.
		Order("id ASC").
		Limit(listPageSize).
		Offset((page - 1) * listPageSize).
		Find(&instructors).Error; err != nil {
		log.Printf("list instructors for gym %d: %v", gymID, err)
		httperr.Internal(c, "failed_to_list_instructors", "Could not list instructors.")
		return
	}

	httpresp.Page(c, instructors, total, page, listPageSize)
}

func (h *InstructorHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid instructor id.")
		return
	}

	var instructor models.Instructor
	if err := h.db.First(&instructor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "instructor not found")
			return
		}
		log.Printf("get instructor %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_instructor", "Could not load instructor.")
		return
	}

	httpresp.OK(c, instructor)
}

func (h *InstructorHandler) Create(c *gin.Context) {
	var req InstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if errs := validation.Validate(h.db, instructorRules(0), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not create instructor.")
		return
	}

	instructor := models.Instructor{
		GymID:        req.GymID,
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		PasswordHash: string(hashed),
		Arrive:       req.Arrive,
		Leave:        req.Leave,
	}

	if err := h.db.Create(&instructor).Error; err != nil {
		log.Printf("create instructor: %v", err)
		httperr.Internal(c, "failed_to_create_instructor", "Could not create instructor.")
		return
	}

	h.dispatch(c, "instructor_created", instructor.ID)

	c.JSON(http.StatusCreated, instructor)
}

func (h *InstructorHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid instructor id.")
		return
	}

	var instructor models.Instructor
	if err := h.db.First(&instructor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "instructor not found")
			return
		}
		log.Printf("get instructor %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_instructor", "Could not load instructor.")
		return
	}

	var req InstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if errs := validation.Validate(h.db, instructorRules(instructor.ID), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not update instructor.")
		return
	}

	instructor.GymID = req.GymID
	instructor.Name = req.Name
	instructor.Email = strings.ToLower(strings.TrimSpace(req.Email))
	instructor.Phone = req.Phone
	instructor.PasswordHash = string(hashed)
	instructor.Arrive = req.Arrive
	instructor.Leave = req.Leave

	if err := h.db.Save(&instructor).Error; err != nil {
		log.Printf("update instructor %d: %v", id, err)
		httperr.Internal(c, "failed_to_update_instructor", "Could not update instructor.")
		return
	}

	h.dispatch(c, "instructor_updated", instructor.ID)

	httpresp.OK(c, instructor)
}

func (h *InstructorHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid instructor id.")
		return
	}

	var instructor models.Instructor
	if err := h.db.First(&instructor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "instructor not found")
			return
		}
		log.Printf("get instructor %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_instructor", "Could not load instructor.")
		return
	}

	if err := h.db.Delete(&instructor).Error; err != nil {
		log.Printf("delete instructor %d: %v", id, err)
		httperr.Internal(c, "failed_to_delete_instructor", "Could not delete instructor.")
		return
	}

	h.dispatch(c, "instructor_deleted", instructor.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Instructor deleted"})
}

func (h *InstructorHandler) dispatch(c *gin.Context, action string, entityID uint) {
	principal := middleware.Principal(c)
	h.audit.Dispatch(audit.Event{
		ActorRole: principal.Role,
		ActorID:   &principal.ID,
		Action:    action,
		Entity:    "instructor",
		EntityID:  &entityID,
	})
}
