package store

import (
	"path/filepath"
	"strings"

	"github.com/spec-kit/support-desk/internal/config"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// extension fallback for Word documents uploaded with a generic MIME type
var wordExtensions = map[string]string{
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ValidateUpload checks an upload against the attachment policy. It runs
// before any round trip so oversized or disallowed files never hit the
// network.
func ValidateUpload(cfg config.AttachmentConfig, upload Upload) error {
	if upload.SizeBytes <= 0 {
		return apperrors.NewValidationError("file size required", nil)
	}
	if cfg.MaxSizeBytes > 0 && upload.SizeBytes > cfg.MaxSizeBytes {
		return apperrors.NewUnsupportedFile("file exceeds size limit", map[string]any{
			"size_bytes": upload.SizeBytes,
			"max_bytes":  cfg.MaxSizeBytes,
		})
	}

	mimeType := strings.ToLower(strings.TrimSpace(upload.MimeType))
	if mimeType == "" || mimeType == "application/octet-stream" {
		if mapped, ok := wordExtensions[strings.ToLower(filepath.Ext(upload.FileName))]; ok {
			mimeType = mapped
		}
	}

	for _, allowed := range cfg.AllowedTypes {
		allowed = strings.ToLower(allowed)
		if prefix, ok := strings.CutSuffix(allowed, "/*"); ok {
			if strings.HasPrefix(mimeType, prefix+"/") {
				return nil
			}
			continue
		}
		if mimeType == allowed {
			return nil
		}
	}
	return apperrors.NewUnsupportedFile("file type not allowed", map[string]any{
		"mime_type": upload.MimeType,
		"file_name": upload.FileName,
	})
}
