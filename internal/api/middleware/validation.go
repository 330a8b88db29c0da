package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/constants"
	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/api/dto/v1/inquiry"
	"github.com/osa911/waitlist/internal/api/validation"
	"github.com/osa911/waitlist/internal/utils"
)

// ValidateSubmitRequest binds the inquiry body and stores it in the context
// under constants.ContextKeyInquiry. Field rules are checked later by the
// pipeline; this only rejects bodies that are not an inquiry at all.
func ValidateSubmitRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inquiry.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			details := validation.FormatBindError(err)
			if details == nil {
				utils.HandleAPIError(c, err, http.StatusBadRequest, common.ErrCodeBadRequest, "Invalid request body")
				return
			}
			utils.HandleAPIErrorWithDetails(c, err, http.StatusBadRequest, common.ErrCodeBadRequest, "Invalid request body", details)
			return
		}

		c.Set(constants.ContextKeyInquiry, &req)
		c.Next()
	}
}
