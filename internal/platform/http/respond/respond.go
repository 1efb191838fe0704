// Package respond writes the JSON error envelope shared by every endpoint.
package respond

import (
	"github.com/gin-gonic/gin"

	"imagegen_backend/internal/api"
)

// Responder renders failures as {success:false, message, error?}.
// The error field is populated only in diagnostic (development) mode.
type Responder struct {
	diagnostic bool
}

// New creates a Responder. diagnostic exposes internal error text to clients.
func New(diagnostic bool) *Responder {
	return &Responder{diagnostic: diagnostic}
}

// Error writes the envelope with the given status.
func (r *Responder) Error(c *gin.Context, status int, message string, err error) {
	c.JSON(status, r.Envelope(message, err))
}

// Abort writes the envelope and stops the handler chain.
func (r *Responder) Abort(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, r.Envelope(message, err))
}

// Envelope builds the error body without writing it.
func (r *Responder) Envelope(message string, err error) api.ErrorResponse {
	out := api.ErrorResponse{Success: false, Message: message}
	if r != nil && r.diagnostic && err != nil {
		detail := err.Error()
		out.Error = &detail
	}
	return out
}
