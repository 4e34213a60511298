package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/models"
	"alfredoptarigan/talent-screener/internal/services"
)

type UploadHandler struct {
	session *services.Session
	uploads services.UploadService
	log     *zap.Logger
}

func NewUploadHandler(session *services.Session, uploads services.UploadService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{
		session: session,
		uploads: uploads,
		log:     logger.OrNop(log),
	}
}

// HandleJobDescription handles POST /job-description
func (h *UploadHandler) HandleJobDescription(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "file is required")
	}

	doc, err := h.uploads.ReadFile(fh)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	h.session.SetJobDescription(doc)
	h.log.Info("job description uploaded", zap.String("file", doc.Name), zap.String("mime_type", doc.MimeType))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Job description uploaded successfully",
		"document": uploadResponse("", doc),
	})
}

// HandleCandidateFiles handles POST /candidates/files. Unreadable files are
// registered with the error status so the rest of the batch is unaffected.
func (h *UploadHandler) HandleCandidateFiles(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "failed to parse multipart form")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "No files uploaded. Please upload CVs in the 'files' field.")
	}

	var (
		accepted []models.UploadResponse
		rejected []models.FileStatusResponse
	)
	for _, fh := range headers {
		doc, err := h.uploads.ReadFile(fh)
		if err != nil {
			file := h.session.AddRejectedFile(fh.Filename, err)
			h.log.Warn("candidate file rejected", zap.String("file", fh.Filename), zap.Error(err))
			rejected = append(rejected, fileStatusResponse(file))
			continue
		}

		added := h.session.AddFiles(doc)
		accepted = append(accepted, uploadResponse(added[0].ID, doc))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Files uploaded",
		"files":    accepted,
		"rejected": rejected,
	})
}

// HandleListFiles handles GET /candidates/files
func (h *UploadHandler) HandleListFiles(c *fiber.Ctx) error {
	files := h.session.Files()

	response := make([]models.FileStatusResponse, 0, len(files))
	for _, f := range files {
		response = append(response, fileStatusResponse(f))
	}
	return c.JSON(response)
}

// HandleDeleteFile handles DELETE /candidates/files/:id
func (h *UploadHandler) HandleDeleteFile(c *fiber.Ctx) error {
	if err := h.session.RemoveFile(c.Params("id")); err != nil {
		return errorResponse(c, fiber.StatusNotFound, "File not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func uploadResponse(id string, doc *models.Document) models.UploadResponse {
	return models.UploadResponse{
		ID:       id,
		Filename: doc.Name,
		MimeType: doc.MimeType,
		Size:     len(doc.Data),
	}
}

func fileStatusResponse(f models.ProcessingFile) models.FileStatusResponse {
	resp := models.FileStatusResponse{
		ID:     f.ID,
		Status: f.Status,
		Error:  f.Error,
	}
	if f.Document != nil {
		resp.Name = f.Document.Name
		resp.MimeType = f.Document.MimeType
	}
	return resp
}
