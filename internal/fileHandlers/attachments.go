package fileHandlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"chatcord-backend/internal/models"

	"github.com/gabriel-vasile/mimetype"
)

// maxAttachmentSize caps uploads at 25 MiB.
const maxAttachmentSize = 25 << 20

// HandleAttachmentUpload stores an uploaded file under a content-hash name
// and returns the attachment reference ({url, type, name}) that gets
// persisted next to the message. The MIME type is sniffed from the content,
// not taken from the client.
func HandleAttachmentUpload(r *http.Request) (models.Attachment, error) {
	var attachment models.Attachment

	formFile, header, err := r.FormFile("file")
	if err != nil {
		return attachment, err
	}
	defer formFile.Close()

	content, err := io.ReadAll(io.LimitReader(formFile, maxAttachmentSize+1))
	if err != nil {
		return attachment, err
	}
	if len(content) > maxAttachmentSize {
		return attachment, fmt.Errorf("attachment exceeds the %d byte limit", maxAttachmentSize)
	}

	detected := mimetype.Detect(content)

	hash := sha256.Sum256(content)
	fileName := hex.EncodeToString(hash[:]) + detected.Extension()
	folderPath := filepath.Join(".", "public", "attachments")

	err = writeOnce(folderPath, fileName, content)
	if err != nil {
		return attachment, err
	}

	attachment.URL = "/cdn/attachments/" + fileName
	attachment.Type = detected.String()
	attachment.Name = header.Filename
	return attachment, nil
}
