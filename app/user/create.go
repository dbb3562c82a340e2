package user

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserCreate(c *gin.Context, d *internal.Deps) {
	var data createBody
	if err := d.Validator.BindRequest(c.Request, "register", &data); err != nil {
		c.Error(err)
		return
	}

	id, err := d.Users.Register(c.Request.Context(), data.Username, data.Email, data.Password)
	if err != nil {
		c.Error(err)
		return
	}

	zap.L().Debug("New user registered", zap.String("userID", id), zap.String("requestID", c.GetString("requestID")))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}
