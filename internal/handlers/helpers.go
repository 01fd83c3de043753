package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"logingate/internal/models"
)

// respond writes the RestResult envelope. The HTTP status follows the
// result code.
func respond(c *gin.Context, result any, err error) {
	if err != nil {
		code := models.CodeOf(err)
		c.JSON(code.HTTPStatus(), models.Fail(err))
		return
	}
	c.JSON(http.StatusOK, models.OK(result))
}

func bindJSON(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.Printf("%s bad request: bind json failed: err=%v", op, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return false
	}
	return true
}
