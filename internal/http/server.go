package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/example/jobdesk/backend/internal/models"
	"github.com/example/jobdesk/backend/internal/progress"
	"github.com/example/jobdesk/backend/internal/repository"
	"github.com/example/jobdesk/backend/internal/service"
)

// Server wraps the gin engine and collaborators needed to handle API requests.
type Server struct {
	Engine    *gin.Engine
	jobs      *repository.JobRepository
	bills     *repository.BillRepository
	service   *service.JobService
	listLimit int
}

// NewServer constructs a new API server and registers routes.
func NewServer(jobs *repository.JobRepository, bills *repository.BillRepository, svc *service.JobService, listLimit int) *Server {
	router := gin.Default()
	srv := &Server{Engine: router, jobs: jobs, bills: bills, service: svc, listLimit: listLimit}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	api := s.Engine.Group("/api")
	api.POST("/jobs", s.createJob)
	api.GET("/jobs", s.listJobs)
	api.GET("/jobs/:jobRef", s.getJob)
	api.GET("/jobs/:jobRef/actions", s.jobActions)
	api.POST("/jobs/:jobRef/transition", s.transition)
	api.POST("/jobs/:jobRef/assign", s.assignTechnician)
	api.GET("/jobs/:jobRef/billable", s.billable)
	api.POST("/jobs/:jobRef/bill", s.createBill)
	api.GET("/jobs/:jobRef/bills", s.listBills)
	api.POST("/jobs/:jobRef/return-note", s.issueReturnNote)
}

func (s *Server) createJob(c *gin.Context) {
	var payload struct {
		CustomerName  string `json:"customerName" binding:"required"`
		CustomerPhone string `json:"customerPhone"`
		Device        string `json:"device" binding:"required"`
		SerialNumber  string `json:"serialNumber"`
		Fault         string `json:"fault"`
		Remarks       string `json:"remarks"`
		Technician    string `json:"technician"`
		CreatedBy     string `json:"createdBy" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := &models.Job{
		CustomerName:  payload.CustomerName,
		CustomerPhone: payload.CustomerPhone,
		Device:        payload.Device,
		SerialNumber:  payload.SerialNumber,
		Fault:         payload.Fault,
		Remarks:       payload.Remarks,
		Technician:    payload.Technician,
		CreatedBy:     payload.CreatedBy,
	}

	if err := s.service.CreateJob(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (s *Server) listJobs(c *gin.Context) {
	var (
		jobs []models.Job
		err  error
	)
	if technician := c.Query("technician"); technician != "" {
		jobs, err = s.jobs.ListByTechnician(c.Request.Context(), technician, s.listLimit)
	} else {
		jobs, err = s.jobs.List(c.Request.Context(), s.listLimit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) getJob(c *gin.Context) {
	job, ok := s.fetchJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job)
}

// jobActions returns the progress values an edit form may legally offer for
// this job, so list views expose only legal actions.
func (s *Server) jobActions(c *gin.Context) {
	job, ok := s.fetchJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobRef":   job.JobRef,
		"progress": job.Progress,
		"targets":  progress.Targets(job.Progress),
	})
}

func (s *Server) transition(c *gin.Context) {
	var payload struct {
		Progress string `json:"progress" binding:"required"`
		Actor    string `json:"actor"`
		Remarks  string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := s.service.SubmitTransition(c.Request.Context(), service.TransitionRequest{
		JobRef:            c.Param("jobRef"),
		RequestedProgress: payload.Progress,
		Actor:             payload.Actor,
		Remarks:           payload.Remarks,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) assignTechnician(c *gin.Context) {
	var payload struct {
		Technician string `json:"technician" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := s.service.AssignTechnician(c.Request.Context(), c.Param("jobRef"), payload.Technician)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) billable(c *gin.Context) {
	job, ok := s.fetchJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobRef": job.JobRef, "billable": s.service.CanBill(job)})
}

func (s *Server) createBill(c *gin.Context) {
	var payload struct {
		Amount    float64 `json:"amount" binding:"required"`
		CreatedBy string  `json:"createdBy" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bill, err := s.service.CreateBill(c.Request.Context(), c.Param("jobRef"), payload.Amount, payload.CreatedBy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func (s *Server) listBills(c *gin.Context) {
	bills, err := s.bills.ListByJobRef(c.Request.Context(), c.Param("jobRef"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bills)
}

func (s *Server) issueReturnNote(c *gin.Context) {
	var payload struct {
		CreatedBy string `json:"createdBy" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	note, err := s.service.IssueReturnNote(c.Request.Context(), c.Param("jobRef"), payload.CreatedBy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (s *Server) fetchJob(c *gin.Context) (*models.Job, bool) {
	job, err := s.jobs.FindByRef(c.Request.Context(), c.Param("jobRef"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return job, true
}

// writeError maps the transition error taxonomy onto HTTP statuses. Every
// kind is recoverable; the job is left unchanged on rule violations.
func writeError(c *gin.Context, err error) {
	var terr *progress.TransitionError
	if errors.As(err, &terr) {
		status := http.StatusConflict
		if terr.Kind == progress.KindJobNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": terr.Message, "code": terr.Kind.String()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
