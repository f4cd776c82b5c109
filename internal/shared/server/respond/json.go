package respond

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Created writes a 201 response for a newly created resource.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// Attachment streams r as a download named fileName. The length is unknown, so the body is chunked.
func Attachment(c *gin.Context, contentType, fileName string, r io.Reader) {
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.DataFromReader(http.StatusOK, -1, contentType, r, nil)
}
