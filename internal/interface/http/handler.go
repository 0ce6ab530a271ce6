package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medtrack/medtrack-service/internal/domain/caregiver"
	"github.com/medtrack/medtrack-service/internal/domain/medication"
	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
)

// Handler wires the HTTP transport to the tracker domain services.
type Handler struct {
	medicationSvc medication.Service
	pharmacySvc   pharmacy.Service
	caregiverSvc  caregiver.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(medicationSvc medication.Service, pharmacySvc pharmacy.Service, caregiverSvc caregiver.Service, logger *slog.Logger) *Handler {
	return &Handler{
		medicationSvc: medicationSvc,
		pharmacySvc:   pharmacySvc,
		caregiverSvc:  caregiverSvc,
		logger:        logger.With("component", "http.handler"),
	}
}

func currentUserID(c *gin.Context) (int64, bool) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth claims", nil))
		return 0, false
	}
	return claims.UserID, true
}

// ListMedications returns the user's full medication list.
func (h *Handler) ListMedications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	meds, err := h.medicationSvc.List(c.Request.Context(), userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"medications": meds})
}

// DueToday returns the medications scheduled for today, earliest dose first.
func (h *Handler) DueToday(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	meds, err := h.medicationSvc.DueToday(c.Request.Context(), userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"medications": meds})
}

// WeekSchedule returns the current week's adherence grid.
func (h *Handler) WeekSchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	schedule, err := h.medicationSvc.WeekSchedule(c.Request.Context(), userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// CreateMedication adds a new medication from a draft payload.
func (h *Handler) CreateMedication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var draft medication.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	med, err := h.medicationSvc.Save(c.Request.Context(), userID, "", draft)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, med)
}

// UpdateMedication replaces the editable fields of an existing medication.
// The adherence log survives the edit.
func (h *Handler) UpdateMedication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var draft medication.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	med, err := h.medicationSvc.Save(c.Request.Context(), userID, c.Param("id"), draft)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, med)
}

// DeleteMedication removes a medication.
func (h *Handler) DeleteMedication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.medicationSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type toggleRequest struct {
	Date string `json:"date"`
}

// ToggleMedication flips the taken flag for a date, defaulting to today.
func (h *Handler) ToggleMedication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	result, err := h.medicationSvc.Toggle(c.Request.Context(), userID, c.Param("id"), req.Date)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// NearbyPharmacies searches for pharmacies around the supplied coordinate.
func (h *Handler) NearbyPharmacies(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lat must be a number", err))
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lng must be a number", err))
		return
	}
	var radius float64
	if raw := c.Query("radiusKm"); raw != "" {
		if radius, err = strconv.ParseFloat(raw, 64); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "radiusKm must be a number", err))
			return
		}
	}

	places, err := h.pharmacySvc.Search(c.Request.Context(), userID, pharmacy.SearchRequest{
		Origin:   pharmacy.Coordinate{Lat: lat, Lng: lng},
		Query:    c.Query("q"),
		RadiusKm: radius,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pharmacies": places})
}

// PreferredPharmacy returns the stored preferred pharmacy, with a directions
// link derived from its snapshot.
func (h *Handler) PreferredPharmacy(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	place, found, err := h.pharmacySvc.Preferred(c.Request.Context(), userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"pharmacy": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pharmacy":      place,
		"directionsUrl": pharmacy.DirectionsURL(place),
	})
}

// ChoosePreferredPharmacy replaces the preferred-pharmacy selection.
func (h *Handler) ChoosePreferredPharmacy(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var place pharmacy.Place
	if err := c.ShouldBindJSON(&place); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	snapshot, err := h.pharmacySvc.ChoosePreferred(c.Request.Context(), userID, place)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pharmacy": snapshot})
}

// RefillCall resolves the preferred pharmacy into a dialable target.
func (h *Handler) RefillCall(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	call, err := h.pharmacySvc.RefillCall(c.Request.Context(), userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

// Caregiver returns the stored caregiver contact.
func (h *Handler) Caregiver(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contact, found, err := h.caregiverSvc.Get(c.Request.Context(), userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"caregiver": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"caregiver": contact})
}

// SaveCaregiver create-or-replaces the caregiver contact.
func (h *Handler) SaveCaregiver(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var contact caregiver.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	saved, err := h.caregiverSvc.Save(c.Request.Context(), userID, contact)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"caregiver": saved})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
