package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pronto/backend/internal/domain"
	"pronto/backend/internal/service/auth"
	"pronto/backend/internal/service/booking"
	"pronto/backend/internal/service/catalog"
	"pronto/backend/internal/store"
)

type Server struct {
	log     *slog.Logger
	auth    *auth.Service
	catalog *catalog.Service
	booking *booking.Service
}

func NewServer(log *slog.Logger, authSvc *auth.Service, catalogSvc *catalog.Service, bookingSvc *booking.Service) *Server {
	return &Server{log: log, auth: authSvc, catalog: catalogSvc, booking: bookingSvc}
}

// Router builds the HTTP surface. Everything except /auth requires a bearer
// token; role checks sit on the individual routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
	}

	authed := router.Group("/", AuthRequired(s.auth))

	services := authed.Group("/services")
	{
		services.POST("", RequireRole(domain.RoleServiceProvider), s.handleCreateService)
		services.POST("/:serviceId/availability", RequireRole(domain.RoleServiceProvider), s.handleSetAvailability)
		services.GET("", s.handleListServices)
		services.GET("/:serviceId/slots", s.handleListOpenSlots)
	}

	appointments := authed.Group("/appointments")
	{
		appointments.POST("", RequireRole(domain.RoleUser), s.handleBookAppointment)
		appointments.GET("/me", s.handleMyAppointments)
	}

	authed.GET("/me/schedule", RequireRole(domain.RoleServiceProvider), s.handleDaySchedule)

	return router
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user, err := s.auth.Register(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		var vErr *auth.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		case errors.Is(err, store.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
		default:
			s.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var vErr *auth.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			s.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type createServiceRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (s *Server) handleCreateService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	svc, err := s.catalog.CreateService(c.Request.Context(), catalog.CreateServiceInput{
		ProviderID:      callerID(c),
		Name:            req.Name,
		Type:            domain.ServiceType(req.Type),
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		var vErr *catalog.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":              svc.ID,
		"name":            svc.Name,
		"type":            svc.Type,
		"durationMinutes": svc.DurationMinutes,
	})
}

type setAvailabilityRequest struct {
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (s *Server) handleSetAvailability(c *gin.Context) {
	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	entry, err := s.catalog.SetAvailability(c.Request.Context(), catalog.SetAvailabilityInput{
		ProviderID: callerID(c),
		ServiceID:  c.Param("serviceId"),
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		var vErr *catalog.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		case errors.Is(err, catalog.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "service does not belong to provider"})
		case errors.Is(err, catalog.ErrOverlappingAvailability):
			c.JSON(http.StatusConflict, gin.H{"error": "availability overlaps an existing window"})
		default:
			s.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        entry.ID,
		"dayOfWeek": entry.DayOfWeek,
		"startTime": domain.FormatClock(entry.StartMinutes),
		"endTime":   domain.FormatClock(entry.EndMinutes),
	})
}

type serviceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"durationMinutes"`
	ProviderName    string `json:"providerName,omitempty"`
}

func (s *Server) handleListServices(c *gin.Context) {
	services, err := s.catalog.ListServices(c.Request.Context(), domain.ServiceType(c.Query("type")))
	if err != nil {
		var vErr *catalog.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service type"})
			return
		}
		s.internalError(c, err)
		return
	}

	out := make([]serviceResponse, 0, len(services))
	for _, svc := range services {
		resp := serviceResponse{
			ID:              svc.ID.String(),
			Name:            svc.Name,
			Type:            string(svc.Type),
			DurationMinutes: svc.DurationMinutes,
		}
		if svc.Provider != nil {
			resp.ProviderName = svc.Provider.Name
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListOpenSlots(c *gin.Context) {
	slots, err := s.catalog.ListOpenSlots(c.Request.Context(), c.Param("serviceId"), c.Query("date"))
	if err != nil {
		var vErr *catalog.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		default:
			s.internalError(c, err)
		}
		return
	}

	out := make([]gin.H, 0, len(slots))
	for _, slot := range slots {
		out = append(out, gin.H{
			"slotId":    slot.SlotID,
			"startTime": slot.StartTime,
			"endTime":   slot.EndTime,
		})
	}
	c.JSON(http.StatusOK, out)
}

type bookAppointmentRequest struct {
	SlotID string `json:"slotId"`
}

func (s *Server) handleBookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	appt, err := s.booking.BookSlot(c.Request.Context(), booking.BookInput{
		UserID: callerID(c),
		SlotID: req.SlotID,
	})
	if err != nil {
		var rej *booking.Rejection
		if !errors.As(err, &rej) {
			s.internalError(c, err)
			return
		}
		c.JSON(rejectionStatus(rej), gin.H{"error": rej.Error(), "reason": rej.Reason})
		return
	}

	c.JSON(http.StatusCreated, appointmentResponse(appt))
}

// rejectionStatus maps rejection reasons onto the status codes clients key
// off: bad input 400, unknown service 404, self-booking 403, everything else
// that violates a booking rule 409.
func rejectionStatus(rej *booking.Rejection) int {
	if rej.Reason == booking.ReasonProviderOwnService {
		return http.StatusForbidden
	}
	switch rej.Reason.Class() {
	case booking.ClassMalformedInput:
		return http.StatusBadRequest
	case booking.ClassNotFound:
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

func appointmentResponse(appt domain.Appointment) gin.H {
	resp := gin.H{
		"id":        appt.ID,
		"slotId":    appt.SlotID,
		"serviceId": appt.ServiceID,
		"date":      appt.Date,
		"startTime": domain.FormatClock(appt.StartMinutes),
		"endTime":   domain.FormatClock(appt.EndMinutes),
		"status":    appt.Status,
	}
	if appt.Service != nil {
		resp["serviceName"] = appt.Service.Name
	}
	return resp
}

func (s *Server) handleMyAppointments(c *gin.Context) {
	appts, err := s.booking.MyAppointments(c.Request.Context(), callerID(c))
	if err != nil {
		s.internalError(c, err)
		return
	}

	out := make([]gin.H, 0, len(appts))
	for _, appt := range appts {
		out = append(out, appointmentResponse(appt))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDaySchedule(c *gin.Context) {
	days, err := s.booking.DaySchedule(c.Request.Context(), callerID(c), c.Query("date"))
	if err != nil {
		var rej *booking.Rejection
		if errors.As(err, &rej) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format"})
			return
		}
		s.internalError(c, err)
		return
	}

	out := make([]gin.H, 0, len(days))
	for _, day := range days {
		appts := make([]gin.H, 0, len(day.Appointments))
		for _, appt := range day.Appointments {
			appts = append(appts, gin.H{
				"id":        appt.ID,
				"startTime": domain.FormatClock(appt.StartMinutes),
				"endTime":   domain.FormatClock(appt.EndMinutes),
				"status":    appt.Status,
			})
		}
		out = append(out, gin.H{
			"serviceId":    day.ServiceID,
			"serviceName":  day.ServiceName,
			"appointments": appts,
		})
	}
	c.JSON(http.StatusOK, out)
}
