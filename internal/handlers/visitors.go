package handlers

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatepass-server/internal/models"
	"gatepass-server/internal/utils"
)

// VisitorHandler handles vehicle gate-pass records.
type VisitorHandler struct {
	DB *gorm.DB
}

// NewVisitorHandler creates a new VisitorHandler.
func NewVisitorHandler(db *gorm.DB) *VisitorHandler {
	return &VisitorHandler{DB: db}
}

const visitDateLayout = "2006-01-02"

// CreateVisitorRequest represents the request body for recording an entry.
type CreateVisitorRequest struct {
	PlateNumber  string `json:"plateNumber" binding:"required"`
	VisitDate    string `json:"visitDate"`
	EntryTime    string `json:"entryTime"`
	EntryGate    string `json:"entryGate" binding:"required"`
	VisitorName  string `json:"visitorName" binding:"required"`
	MobileNumber string `json:"mobileNumber" binding:"required"`
	Purpose      string `json:"purpose" binding:"required"`
	VehicleType  string `json:"vehicleType"`
	Notes        string `json:"notes"`
}

// CreateVisitor records a vehicle entry.
func (h *VisitorHandler) CreateVisitor(c *gin.Context) {
	var req CreateVisitorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	plate := models.NormalizePlate(req.PlateNumber)

	visitDate := time.Now()
	if req.VisitDate != "" {
		parsed, err := time.Parse(visitDateLayout, req.VisitDate)
		if err != nil {
			utils.BadRequest(c, "Invalid visitDate, expected YYYY-MM-DD")
			return
		}
		visitDate = parsed
	}
	year, month, day := visitDate.Date()
	visitDate = time.Date(year, month, day, 0, 0, 0, 0, visitDate.Location())

	entryTime := req.EntryTime
	if entryTime == "" {
		entryTime = time.Now().Format("15:04:05")
	}

	// A vehicle cannot enter twice without exiting first
	var existing int64
	err := h.DB.Model(&models.Visitor{}).
		Where("plate_number = ? AND visit_date = ? AND status = ?", plate, visitDate, models.StatusEntered).
		Count(&existing).Error
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if existing > 0 {
		utils.BadRequest(c, "Vehicle already has an active entry for today.")
		return
	}

	visitor := models.Visitor{
		PlateNumber:  plate,
		VisitDate:    visitDate,
		EntryTime:    entryTime,
		EntryGate:    req.EntryGate,
		VisitorName:  req.VisitorName,
		MobileNumber: req.MobileNumber,
		Purpose:      req.Purpose,
		VehicleType:  req.VehicleType,
		Status:       models.StatusEntered,
		Notes:        req.Notes,
	}

	if err := h.DB.Create(&visitor).Error; err != nil {
		utils.InternalServerError(c, "Failed to create visitor: "+err.Error())
		return
	}

	utils.Created(c, "Visitor entry recorded", visitor)
}

// VisitorListResponse represents a page of visitor records.
type VisitorListResponse struct {
	Visitors    []models.Visitor `json:"visitors"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// filteredVisitors applies the shared search/status/date filters from the
// query string.
func (h *VisitorHandler) filteredVisitors(c *gin.Context) *gorm.DB {
	query := h.DB.Model(&models.Visitor{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("plate_number LIKE ? OR visitor_name LIKE ? OR mobile_number LIKE ?",
			pattern, pattern, pattern)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	fromDate := c.Query("fromDate")
	toDate := c.Query("toDate")
	if fromDate != "" && toDate != "" {
		query = query.Where("visit_date BETWEEN ? AND ?", fromDate, toDate)
	}

	return query
}

// GetVisitors lists visitor records, newest first, with pagination.
func (h *VisitorHandler) GetVisitors(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	var total int64
	if err := h.filteredVisitors(c).Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	var visitors []models.Visitor
	err = h.filteredVisitors(c).Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&visitors).Error
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.Success(c, "Visitors fetched successfully", VisitorListResponse{
		Visitors:    visitors,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
	})
}

// GetVisitor fetches a single visitor record by id.
func (h *VisitorHandler) GetVisitor(c *gin.Context) {
	var visitor models.Visitor
	if err := h.DB.First(&visitor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Visitor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Visitor fetched successfully", visitor)
}

// UpdateVisitorRequest represents the request body for updating a record,
// typically to record an exit or cancel an entry.
type UpdateVisitorRequest struct {
	VisitorName  string `json:"visitorName"`
	MobileNumber string `json:"mobileNumber"`
	Purpose      string `json:"purpose"`
	VehicleType  string `json:"vehicleType"`
	Status       string `json:"status" binding:"omitempty,oneof=ENTERED EXITED CANCELLED"`
	ExitTime     string `json:"exitTime"`
	ExitGate     string `json:"exitGate"`
	Notes        string `json:"notes"`
}

// UpdateVisitor updates a visitor record.
func (h *VisitorHandler) UpdateVisitor(c *gin.Context) {
	var req UpdateVisitorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var visitor models.Visitor
	if err := h.DB.First(&visitor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Visitor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.VisitorName != "" {
		visitor.VisitorName = req.VisitorName
	}
	if req.MobileNumber != "" {
		visitor.MobileNumber = req.MobileNumber
	}
	if req.Purpose != "" {
		visitor.Purpose = req.Purpose
	}
	if req.VehicleType != "" {
		visitor.VehicleType = req.VehicleType
	}
	if req.Status != "" {
		visitor.Status = models.VisitorStatus(req.Status)
		// Recording an exit stamps the time if the caller didn't
		if visitor.Status == models.StatusExited && req.ExitTime == "" && visitor.ExitTime == "" {
			visitor.ExitTime = time.Now().Format("15:04:05")
		}
	}
	if req.ExitTime != "" {
		visitor.ExitTime = req.ExitTime
	}
	if req.ExitGate != "" {
		visitor.ExitGate = req.ExitGate
	}
	if req.Notes != "" {
		visitor.Notes = req.Notes
	}

	if err := h.DB.Save(&visitor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update visitor: "+err.Error())
		return
	}

	utils.Success(c, "Visitor updated successfully", visitor)
}

// DeleteVisitor soft-deletes a visitor record.
func (h *VisitorHandler) DeleteVisitor(c *gin.Context) {
	var visitor models.Visitor
	if err := h.DB.First(&visitor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Visitor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&visitor).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete visitor: "+err.Error())
		return
	}

	utils.Success(c, "Visitor deleted successfully", nil)
}

// DownloadExcel streams the filtered visitor log as a spreadsheet.
func (h *VisitorHandler) DownloadExcel(c *gin.Context) {
	var visitors []models.Visitor
	if err := h.filteredVisitors(c).Order("created_at DESC").Find(&visitors).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=visitors.xlsx")

	if err := utils.WriteVisitorsExcel(c.Writer, visitors); err != nil {
		utils.InternalServerError(c, "Failed to generate spreadsheet: "+err.Error())
		return
	}
}

// DownloadPDF streams the filtered visitor log as a PDF report.
func (h *VisitorHandler) DownloadPDF(c *gin.Context) {
	var visitors []models.Visitor
	if err := h.filteredVisitors(c).Order("created_at DESC").Find(&visitors).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=visitors.pdf")

	if err := utils.WriteVisitorsPDF(c.Writer, visitors, time.Now()); err != nil {
		utils.InternalServerError(c, "Failed to generate report: "+err.Error())
		return
	}
}
