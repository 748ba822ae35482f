package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const (
	MB             int64 = 1 << 20
	MaxUploadBytes       = 50 * MB
)

// MaxSizeFor returns the ceiling for an accepted MIME type and false for
// types that may not be uploaded at all.
func MaxSizeFor(mime string) (int64, bool) {
	switch mime {
	case MimeJPEG, MimePNG:
		return 5 * MB, true
	case MimePDF:
		return 20 * MB, true
	case MimeDOC, MimeDOCX:
		return 10 * MB, true
	}
	return 0, false
}

type Document struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FileName           string             `json:"fileName" bson:"file_name"`
	OriginalFileName   string             `json:"originalFileName" bson:"original_file_name"`
	FileType           string             `json:"fileType" bson:"file_type"`
	FileSize           int64              `json:"fileSize" bson:"file_size"`
	FilePath           string             `json:"filePath" bson:"file_path"`
	UploadedBy         primitive.ObjectID `json:"uploadedBy" bson:"uploaded_by"`
	AssociatedResource ResourceRef        `json:"associatedResource" bson:"associated_resource"`
	Description        string             `json:"description,omitempty" bson:"description,omitempty"`
	IsPublic           bool               `json:"isPublic" bson:"is_public"`
	DownloadCount      int                `json:"downloadCount" bson:"download_count"`
	CreatedAt          time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updated_at"`
}

type DocumentView struct {
	Document    `bson:",inline"`
	UploaderRef *User `json:"uploadedBy,omitempty" bson:"uploader_ref,omitempty"`
}

type DocumentBatchDeletePayload struct {
	DocumentIDs []string `json:"documentIds" validate:"required,min=1,dive,objectid"`
}
