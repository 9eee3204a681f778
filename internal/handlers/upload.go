package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 50 << 20

// UploadImage stores the multipart "image" field and returns {url, publicId}.
func UploadImage(uploader MediaUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > maxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}
		defer src.Close()

		res, err := uploader.Upload(c.Request.Context(), file.Filename, file.Header.Get("Content-Type"), src, file.Size)
		if err != nil {
			log.Error().Err(err).Str("module", "http.upload").Msg("upload")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
