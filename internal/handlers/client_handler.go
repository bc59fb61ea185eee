package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	domain "github.com/gymtrack/gymtrack-api/internal/domain/client"
	"github.com/gymtrack/gymtrack-api/internal/httperr"
	"github.com/gymtrack/gymtrack-api/internal/httpresp"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/models"
	ucClient "github.com/gymtrack/gymtrack-api/internal/usecase/client"
	"github.com/gymtrack/gymtrack-api/internal/validation"
)

type ClientHandler struct {
	db       *gorm.DB
	repo     domain.Repository
	createUC *ucClient.CreateClientWithRelations
	updateUC *ucClient.UpdateClientWithRelations
	deleteUC *ucClient.DeleteClientCascade
}

func NewClientHandler(
	db *gorm.DB,
	repo domain.Repository,
	createUC *ucClient.CreateClientWithRelations,
	updateUC *ucClient.UpdateClientWithRelations,
	deleteUC *ucClient.DeleteClientCascade,
) *ClientHandler {
	return &ClientHandler{
		db:       db,
		repo:     repo,
		createUC: createUC,
		updateUC: updateUC,
		deleteUC: deleteUC,
	}
}

// --------- Requests ---------

type ClientRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Birthday     string  `json:"birthday"`
	Sex          string  `json:"sex"`
	Neighborhood string  `json:"neighborhood"`
	Street       string  `json:"street"`
	Number       int     `json:"number"`
	Complement   string  `json:"complement"`
	Zipcode      string  `json:"zipcode"`
	City         string  `json:"city"`
	Phone        string  `json:"phone"`
	Height       float64 `json:"height"`
	Weight       float64 `json:"weight"`
	Blood        string  `json:"blood"`
	GymID        uint    `json:"gym_id"`

	// Either a structured array or a JSON-encoded string of that array.
	EmergencyContacts json.RawMessage `json:"emergency_contacts"`
	MedicalConditions json.RawMessage `json:"medical_conditions"`
}

type ContactPayload struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Number       int    `json:"number"`
	Complement   string `json:"complement"`
	Zipcode      string `json:"zipcode"`
	City         string `json:"city"`
}

type ConditionPayload struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Medicine    string `json:"medicine"`
}

func (r ClientRequest) values() validation.Values {
	return validation.Values{
		"name":         r.Name,
		"email":        strings.ToLower(strings.TrimSpace(r.Email)),
		"password":     r.Password,
		"birthday":     r.Birthday,
		"sex":          r.Sex,
		"neighborhood": r.Neighborhood,
		"street":       r.Street,
		"number":       r.Number,
		"complement":   r.Complement,
		"zipcode":      r.Zipcode,
		"city":         r.City,
		"phone":        r.Phone,
		"height":       r.Height,
		"weight":       r.Weight,
		"blood":        r.Blood,
		"gym_id":       r.GymID,
	}
}

func clientRules(exceptID uint) validation.RuleSet {
	return validation.RuleSet{
		{Name: "name", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 255}}},
		{Name: "neighborhood", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "street", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "number", Required: true, Checks: []validation.Constraint{validation.Min{N: 1}, validation.Max{N: 999999}}},
		{Name: "complement", Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "zipcode", Required: true},
		{Name: "city", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "phone", Checks: []validation.Constraint{validation.MinLen{N: 8}, validation.MaxLen{N: 14}}},
		{Name: "email", Required: true, Checks: []validation.Constraint{validation.Email{}, validation.Unique{Table: "clients", Column: "email", ExceptID: exceptID}}},
		{Name: "birthday", Required: true, Checks: []validation.Constraint{validation.Date{Layout: "2006-01-02"}}},
		{Name: "sex", Required: true, Checks: []validation.Constraint{validation.In{Options: []string{models.SexMasculino, models.SexFeminino}}}},
		{Name: "height", Checks: []validation.Constraint{validation.Numeric{}}},
		{Name: "weight", Checks: []validation.Constraint{validation.Numeric{}}},
		{Name: "blood", Checks: []validation.Constraint{validation.MinLen{N: 1}, validation.MaxLen{N: 3}}},
		{Name: "gym_id", Required: true, Checks: []validation.Constraint{validation.Exists{Table: "gyms"}}},
		{Name: "password", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 8}, validation.MaxLen{N: 30}}},
	}
}

func contactItemRules() validation.RuleSet {
	return validation.RuleSet{
		{Name: "name", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 255}}},
		{Name: "neighborhood", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "street", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "number", Required: true, Checks: []validation.Constraint{validation.Min{N: 1}, validation.Max{N: 999999}}},
		{Name: "complement", Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
		{Name: "zipcode", Required: true},
		{Name: "city", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 4}, validation.MaxLen{N: 255}}},
	}
}

func conditionItemRules() validation.RuleSet {
	return validation.RuleSet{
		{Name: "name", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 255}}},
		{Name: "description", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 300}}},
		{Name: "medicine", Required: true, Checks: []validation.Constraint{validation.MinLen{N: 3}, validation.MaxLen{N: 255}}},
	}
}

// decodeNested accepts the sub-entity arrays either structured or as a
// JSON-encoded string.
func decodeNested(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return json.Unmarshal([]byte(s), out)
	}

	return json.Unmarshal(trimmed, out)
}

// validateNested runs the sub-entity rule sets before the client rules, the
// first failing item aborts.
func (h *ClientHandler) validateNested(contacts []ContactPayload, conditions []ConditionPayload) validation.Errors {
	for _, cond := range conditions {
		vals := validation.Values{
			"name":        cond.Name,
			"description": cond.Description,
			"medicine":    cond.Medicine,
		}
		if errs := validation.Validate(h.db, conditionItemRules(), vals); errs != nil {
			return errs
		}
	}

	for _, contact := range contacts {
		vals := validation.Values{
			"name":         contact.Name,
			"phone":        contact.Phone,
			"neighborhood": contact.Neighborhood,
			"street":       contact.Street,
			"number":       contact.Number,
			"complement":   contact.Complement,
			"zipcode":      contact.Zipcode,
			"city":         contact.City,
		}
		if errs := validation.Validate(h.db, contactItemRules(), vals); errs != nil {
			return errs
		}
	}

	return nil
}

func contactModels(payloads []ContactPayload) []models.EmergencyContact {
	contacts := make([]models.EmergencyContact, 0, len(payloads))
	for _, p := range payloads {
		contacts = append(contacts, models.EmergencyContact{
			ID:           p.ID,
			Name:         p.Name,
			Phone:        p.Phone,
			Neighborhood: p.Neighborhood,
			Street:       p.Street,
			Number:       p.Number,
			Complement:   p.Complement,
			Zipcode:      p.Zipcode,
			City:         p.City,
		})
	}
	return contacts
}

func conditionModels(payloads []ConditionPayload) []models.MedicalCondition {
	conditions := make([]models.MedicalCondition, 0, len(payloads))
	for _, p := range payloads {
		conditions = append(conditions, models.MedicalCondition{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Medicine:    p.Medicine,
		})
	}
	return conditions
}

func (r ClientRequest) model(passwordHash string) models.Client {
	return models.Client{
		GymID:        r.GymID,
		Name:         r.Name,
		Email:        strings.ToLower(strings.TrimSpace(r.Email)),
		PasswordHash: passwordHash,
		Birthday:     r.Birthday,
		Sex:          r.Sex,
		Neighborhood: r.Neighborhood,
		Street:       r.Street,
		Number:       r.Number,
		Complement:   r.Complement,
		Zipcode:      r.Zipcode,
		City:         r.City,
		Phone:        r.Phone,
		Height:       r.Height,
		Weight:       r.Weight,
		Blood:        r.Blood,
	}
}

// --------- Handlers ---------

func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.repo.ListWithRelations(c.Request.Context())
	if err != nil {
		log.Printf("list clients: %v", err)
		httperr.Internal(c, "failed_to_list_clients", "Could not list clients.")
		return
	}

	httpresp.List(c, clients)
}

// ListByGym returns the gym's clients in fixed pages of ten.
func (h *ClientHandler) ListByGym(c *gin.Context) {
	gymID, err := strconv.ParseUint(c.Param("gym_id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid gym id.")
		return
	}

	page := pageParam(c)

	clients, total, err := h.repo.ListByGym(c.Request.Context(), uint(gymID), page, listPageSize)
	if err != nil {
		log.Printf("list clients for gym %d: %v", gymID, err)
		httperr.Internal(c, "failed_to_list_clients", "Could not list clients.")
		return
	}

	httpresp.Page(c, clients, total, page, listPageSize)
}

func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid client id.")
		return
	}

	client, err := h.repo.GetWithRelations(c.Request.Context(), id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "client not found")
			return
		}
		log.Printf("get client %d: %v", id, err)
		httperr.Internal(c, "failed_to_get_client", "Could not load client.")
		return
	}

	httpresp.OK(c, client)
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var contacts []ContactPayload
	if err := decodeNested(req.EmergencyContacts, &contacts); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed emergency_contacts payload.")
		return
	}

	var conditions []ConditionPayload
	if err := decodeNested(req.MedicalConditions, &conditions); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed medical_conditions payload.")
		return
	}

	if errs := h.validateNested(contacts, conditions); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}
	if errs := validation.Validate(h.db, clientRules(0), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not create client.")
		return
	}

	client, err := h.createUC.Execute(c.Request.Context(), ucClient.CreateClientInput{
		Actor:      middleware.Principal(c),
		Client:     req.model(string(hashed)),
		Contacts:   contactModels(contacts),
		Conditions: conditionModels(conditions),
	})
	if err != nil {
		log.Printf("create client: %v", err)
		httperr.Internal(c, "failed_to_create_client", "Could not create client.")
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid client id.")
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var contacts []ContactPayload
	if err := decodeNested(req.EmergencyContacts, &contacts); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed emergency_contacts payload.")
		return
	}

	var conditions []ConditionPayload
	if err := decodeNested(req.MedicalConditions, &conditions); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed medical_conditions payload.")
		return
	}

	if errs := h.validateNested(contacts, conditions); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}
	if errs := validation.Validate(h.db, clientRules(id), req.values()); errs != nil {
		httperr.Unprocessable(c, errs)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not update client.")
		return
	}

	client, err := h.updateUC.Execute(c.Request.Context(), ucClient.UpdateClientInput{
		Actor:      middleware.Principal(c),
		ClientID:   id,
		Client:     req.model(string(hashed)),
		Contacts:   contactModels(contacts),
		Conditions: conditionModels(conditions),
	})
	if err != nil {
		switch {
		case httperr.IsBusiness(err, "client_not_found"):
			httperr.NotFound(c, "client not found")
		case httperr.IsBusiness(err, "contact_not_found"):
			httperr.NotFound(c, "contact not found")
		case httperr.IsBusiness(err, "condition_not_found"):
			httperr.NotFound(c, "condition not found")
		default:
			log.Printf("update client %d: %v", id, err)
			httperr.Internal(c, "failed_to_update_client", "Could not update client.")
		}
		return
	}

	httpresp.OK(c, client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid client id.")
		return
	}

	err := h.deleteUC.Execute(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		if httperr.IsBusiness(err, "client_not_found") {
			httperr.NotFound(c, "client not found")
			return
		}
		log.Printf("delete client %d: %v", id, err)
		httperr.Internal(c, "failed_to_delete_client", "Could not delete client.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}
