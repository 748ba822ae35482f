package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/config/middleware"
	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/pkg/paseto"
	"employee-management/pkg/storage"
	util "employee-management/pkg/utils"
	"employee-management/repository"
)

const (
	documentNotFound    = "Document not found"
	documentPageDefault = 10
)

// FileStore is the blob storage behind documents. *storage.Local
// satisfies it.
type FileStore interface {
	Save(fh *multipart.FileHeader) (*storage.StoredFile, error)
	Remove(path string) error
	Exists(path string) bool
	DetectMIME(path string) (string, error)
}

type DocumentHandler struct {
	repo  repository.DocumentRepository
	files FileStore
}

func NewDocumentHandler(repo repository.DocumentRepository, files FileStore) *DocumentHandler {
	return &DocumentHandler{repo: repo, files: files}
}

func (h *DocumentHandler) discard(path string) {
	if err := h.files.Remove(path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("failed to clean up uploaded file")
	}
}

// parseResourceRef checks the association given with an upload or a
// resource listing.
func parseResourceRef(rawType, rawID string) (models.ResourceRef, error) {
	if rawType == "" || rawID == "" {
		return models.ResourceRef{}, apperror.Validation("resourceType and resourceId are required", nil)
	}
	rt, err := models.ParseResourceType(rawType)
	if err != nil || !rt.ValidForDocument() {
		return models.ResourceRef{}, apperror.Validation("Invalid resource type", nil)
	}
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return models.ResourceRef{}, apperror.Validation("Invalid resource ID", nil)
	}
	return models.ResourceRef{Type: rt, ID: id}, nil
}

// contentType prefers the type declared for the multipart part and sniffs
// the stored bytes when the client sent none or a generic one.
func (h *DocumentHandler) contentType(fh *multipart.FileHeader, path string) (string, error) {
	declared := strings.TrimSpace(strings.SplitN(fh.Header.Get(fiber.HeaderContentType), ";", 2)[0])
	if declared != "" && declared != fiber.MIMEOctetStream {
		return strings.ToLower(declared), nil
	}
	return h.files.DetectMIME(path)
}

// UploadDocument godoc
// @Summary Upload Document
// @Description Stores a file and links it to a resource
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Param resourceType formData string true "employee, leave, payroll, department or general"
// @Param resourceId formData string true "ID of the associated record"
// @Param description formData string false "Description"
// @Success 201 {object} models.ItemResponse[models.Document]
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /documents [post]
func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.Validation("No file uploaded", nil)
	}

	stored, err := h.files.Save(fh)
	if err != nil {
		return apperror.Internal("Failed to store file", err)
	}

	ref, err := parseResourceRef(c.FormValue("resourceType"), c.FormValue("resourceId"))
	if err != nil {
		h.discard(stored.Path)
		return err
	}

	mime, err := h.contentType(fh, stored.Path)
	if err != nil {
		h.discard(stored.Path)
		return apperror.Validation("Could not determine file type", nil)
	}
	ceiling, ok := models.MaxSizeFor(mime)
	if !ok {
		h.discard(stored.Path)
		return apperror.Validation("File type not allowed. Allowed types: JPEG, PNG, PDF, DOC, DOCX", nil)
	}
	if stored.Size > models.MaxUploadBytes {
		h.discard(stored.Path)
		return apperror.Validation("File too large. Maximum size is 50MB", nil)
	}
	if stored.Size > ceiling {
		h.discard(stored.Path)
		return apperror.Validation(fmt.Sprintf("File too large for %s. Maximum size is %dMB", mime, ceiling/models.MB), nil)
	}

	doc := &models.Document{
		FileName:           stored.Name,
		OriginalFileName:   fh.Filename,
		FileType:           mime,
		FileSize:           stored.Size,
		FilePath:           stored.Path,
		UploadedBy:         claims.UserID,
		AssociatedResource: ref,
		Description:        c.FormValue("description"),
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.repo.CreateDocument(ctx, doc); err != nil {
		h.discard(stored.Path)
		return apperror.Internal("Failed to save document", err)
	}

	logrus.WithFields(logrus.Fields{
		"document_id": doc.ID.Hex(),
		"mime":        mime,
		"size":        stored.Size,
	}).Info("document uploaded")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "File uploaded successfully",
		"data":    doc,
	})
}

// GetDocumentsByResource godoc
// @Summary List Documents For Resource
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param resourceType query string true "Resource type"
// @Param resourceId query string true "Resource ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.PageResponse[models.DocumentView]
// @Failure 400 {object} models.ErrorResponse
// @Router /documents/resource [get]
func (h *DocumentHandler) GetDocumentsByResource(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	ref, err := parseResourceRef(c.Query("resourceType"), c.Query("resourceId"))
	if err != nil {
		return err
	}
	page, limit := util.ParsePagination(c, documentPageDefault)

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	docs, total, err := h.repo.ListByResource(ctx, ref, page, limit)
	if err != nil {
		return apperror.Internal("Failed to fetch documents", err)
	}
	return sendPage(c, docs, total, page, limit)
}

// GetMyDocuments godoc
// @Summary List My Uploads
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.PageResponse[models.DocumentView]
// @Router /documents/my-documents [get]
func (h *DocumentHandler) GetMyDocuments(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}
	page, limit := util.ParsePagination(c, documentPageDefault)

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	docs, total, err := h.repo.ListByUploader(ctx, claims.UserID, page, limit)
	if err != nil {
		return apperror.Internal("Failed to fetch documents", err)
	}
	return sendPage(c, docs, total, page, limit)
}

// GetDocument godoc
// @Summary Get Document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} models.ItemResponse[models.DocumentView]
// @Failure 404 {object} models.ErrorResponse
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	id, err := paramID(c, documentNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	doc, err := h.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return storeError(err, documentNotFound, "Failed to fetch document")
	}
	return sendData(c, fiber.StatusOK, doc)
}

// DownloadDocument godoc
// @Summary Download Document
// @Description Streams the file under its original name and counts the download
// @Tags Documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) DownloadDocument(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	id, err := paramID(c, documentNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	doc, err := h.repo.IncrementDownloadCount(ctx, id)
	if err != nil {
		return storeError(err, documentNotFound, "Failed to fetch document")
	}
	if !h.files.Exists(doc.FilePath) {
		logrus.WithField("document_id", doc.ID.Hex()).Warn("document file missing on disk")
		return apperror.NotFound("File not found on server")
	}
	return c.Download(doc.FilePath, doc.OriginalFileName)
}

func canDelete(claims *paseto.Claims, doc *models.Document) bool {
	return claims.Role == models.RoleAdmin || doc.UploadedBy == claims.UserID
}

// DeleteDocument godoc
// @Summary Delete Document
// @Description Only the uploader or an admin may delete
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, documentNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	doc, err := h.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return storeError(err, documentNotFound, "Failed to fetch document")
	}
	if !canDelete(claims, &doc.Document) {
		return apperror.Forbidden("Not authorized to delete this document")
	}

	if err := h.files.Remove(doc.FilePath); err != nil {
		return apperror.Internal("Failed to remove file", err)
	}
	if err := h.repo.DeleteDocument(ctx, id); err != nil {
		return storeError(err, documentNotFound, "Failed to delete document")
	}
	return sendMessage(c, "Document deleted successfully")
}

// BatchDeleteDocuments godoc
// @Summary Delete Several Documents
// @Description Nothing is deleted unless the caller may delete every listed document
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ids body models.DocumentBatchDeletePayload true "Document IDs"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /documents/batch-delete [post]
func (h *DocumentHandler) BatchDeleteDocuments(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}

	var payload models.DocumentBatchDeletePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	ids := make([]primitive.ObjectID, 0, len(payload.DocumentIDs))
	for _, hex := range payload.DocumentIDs {
		ids = append(ids, models.ObjectID(hex))
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	docs, err := h.repo.FindDocumentsByIDs(ctx, ids)
	if err != nil {
		return apperror.Internal("Failed to fetch documents", err)
	}
	if len(docs) == 0 {
		return apperror.NotFound("No documents found")
	}
	for i := range docs {
		if !canDelete(claims, &docs[i]) {
			return apperror.Forbidden(fmt.Sprintf("Not authorized to delete document %s", docs[i].ID.Hex()))
		}
	}

	found := make([]primitive.ObjectID, 0, len(docs))
	for i := range docs {
		h.discard(docs[i].FilePath)
		found = append(found, docs[i].ID)
	}
	deleted, err := h.repo.DeleteDocuments(ctx, found)
	if err != nil {
		return apperror.Internal("Failed to delete documents", err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      fmt.Sprintf("%d documents deleted successfully", deleted),
		"deletedCount": deleted,
	})
}
