package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sakthivel/idcard-portal/internal/app/models/dto"
	"github.com/sakthivel/idcard-portal/internal/app/services"
	"github.com/sakthivel/idcard-portal/internal/middleware"
	"github.com/sakthivel/idcard-portal/internal/pkg/filestorage"
)

// StudentController handles student record lifecycle operations
type StudentController struct {
	lifecycleService services.LifecycleService
	fileStorage      filestorage.FileStorage
}

// NewStudentController creates a new StudentController
func NewStudentController(lifecycleService services.LifecycleService, fileStorage filestorage.FileStorage) *StudentController {
	return &StudentController{
		lifecycleService: lifecycleService,
		fileStorage:      fileStorage,
	}
}

// savePhoto stores an optional uploaded photo and returns its URL. A missing
// file is not an error; the engine decides whether a photo is required.
func (c *StudentController) savePhoto(ctx *gin.Context) (string, error) {
	fileHeader, err := ctx.FormFile("photo")
	if err != nil {
		return "", nil
	}
	return c.fileStorage.SaveFileWithPath(fileHeader, "photos")
}

// CreateStudent handles admin direct creation of an approved record
// @Summary Create a student (admin)
// @Description Creates a student record that is Approved immediately
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param request formData dto.CreateStudentRequest true "Student information"
// @Param photo formData file false "Student photo"
// @Success 201 {object} dto.APIResponse{data=models.StudentRecord} "Student created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Duplicate register number or email"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	photoURL, err := c.savePhoto(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	req.PhotoURL = photoURL

	record, err := c.lifecycleService.CreateByAdmin(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      record,
		Timestamp: time.Now(),
	})
}

// GetStudents lists all student records
// @Summary List students (admin)
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.StudentRecord} "Students retrieved"
// @Router /students [get]
func (c *StudentController) GetStudents(ctx *gin.Context) {
	records, err := c.lifecycleService.List(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      records,
		Timestamp: time.Now(),
	})
}

// GetProfile returns the authenticated student's own record
// @Summary Get own profile (student)
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.StudentRecord} "Profile retrieved"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/profile [get]
func (c *StudentController) GetProfile(ctx *gin.Context) {
	record, err := c.lifecycleService.GetByID(ctx, middleware.SubjectID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      record,
		Timestamp: time.Now(),
	})
}

// UpdateProfile applies the authenticated student's profile submission
// @Summary Update own profile (student)
// @Description Moves the record to Pending when at least one field changed
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param request formData dto.UpdateProfileRequest true "Profile fields"
// @Param photo formData file false "Student photo"
// @Success 200 {object} dto.APIResponse{data=models.StudentRecord} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Record is discontinued"
// @Router /students/profile [put]
func (c *StudentController) UpdateProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBind(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid profile data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	photoURL, err := c.savePhoto(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	req.PhotoURL = photoURL

	record, err := c.lifecycleService.UpdateProfile(ctx, middleware.SubjectID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      record,
		Timestamp: time.Now(),
	})
}

// VerifyStudent applies an admin approval or rejection decision
// @Summary Verify a student application (admin)
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.VerifyRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.StudentRecord} "Decision applied"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Record is not Pending"
// @Router /students/{id}/verify [put]
func (c *StudentController) VerifyStudent(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid verification data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	record, err := c.lifecycleService.Verify(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      record,
		Timestamp: time.Now(),
	})
}

// DiscontinueStudent marks an approved record as discontinued
// @Summary Discontinue a student (admin)
// @Description Terminal transition; the ID card is invalidated
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentRecord} "Record discontinued"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Record is not Approved"
// @Router /students/{id}/discontinue [put]
func (c *StudentController) DiscontinueStudent(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	record, err := c.lifecycleService.Discontinue(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      record,
		Timestamp: time.Now(),
	})
}

// BulkCreateStudents imports a batch of already-parsed student rows
// @Summary Bulk import students (admin)
// @Description Creates one Approved record per row; failures are reported per row
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkImportRequest true "Student rows"
// @Success 201 {object} dto.BulkImportResponse "Import report"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Router /students/bulk [post]
func (c *StudentController) BulkCreateStudents(ctx *gin.Context) {
	var req dto.BulkImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid students data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	report, err := c.lifecycleService.BulkImport(ctx, req.Students)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, report)
}

// GetVerification serves the public verification view for a register number
// @Summary Public verification view
// @Description Record projection with the full status timeline, for third parties
// @Tags students
// @Produce json
// @Param registerNumber path string true "Register number"
// @Success 200 {object} dto.APIResponse{data=dto.PublicStudentResponse} "Verification view"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/verify/{registerNumber} [get]
func (c *StudentController) GetVerification(ctx *gin.Context) {
	view, err := c.lifecycleService.GetPublicView(ctx, ctx.Param("registerNumber"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      view,
		Timestamp: time.Now(),
	})
}
